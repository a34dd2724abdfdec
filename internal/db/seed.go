package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var demoUsers = []User{
	{ID: "u1", Name: "Sofia", Age: 26, City: "Buenos Aires", Bio: "Cafe, fotografia y escapadas cortas.", PhotoURL: "https://images.unsplash.com/photo-1487412720507-e7ab37603c6f?auto=format&fit=crop&w=900&q=80"},
	{ID: "u2", Name: "Mateo", Age: 29, City: "Cordoba", Bio: "Runner de manana. Pizza de noche.", PhotoURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=crop&w=900&q=80"},
	{ID: "u3", Name: "Valentina", Age: 24, City: "Rosario", Bio: "Diseno, sushi y playlists raras.", PhotoURL: "https://images.unsplash.com/photo-1464863979621-258859e62245?auto=format&fit=crop&w=900&q=80"},
	{ID: "u4", Name: "Franco", Age: 31, City: "Mendoza", Bio: "Vino, montana y humor negro.", PhotoURL: "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?auto=format&fit=crop&w=900&q=80"},
	{ID: "u5", Name: "Camila", Age: 27, City: "La Plata", Bio: "Minimalismo, yoga y ramen.", PhotoURL: "https://images.unsplash.com/photo-1521119989659-a83eee488004?auto=format&fit=crop&w=900&q=80"},
	{ID: "u6", Name: "Nicolas", Age: 28, City: "Mar del Plata", Bio: "Surf, codigo y cafe fuerte.", PhotoURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?auto=format&fit=crop&w=900&q=80"},
}

// SeedDemoData resets the database and populates it with the demo profiles
// plus a handful of swipes, ~70% likes, with a guaranteed mutual like every
// third pair so the matches screen is never empty on a fresh install.
//
// Compatible with both MySQL and SQLite.
func SeedDemoData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"chat_messages", "matches", "swipes", "push_subscriptions", "device_tokens", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, len(demoUsers))
	copy(users, demoUsers)
	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].Active = true
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("Seeded %d users.", len(users))

	counter := 0
	for i := range users {
		for j := range users {
			if i == j || r.Intn(100) < 40 {
				continue
			}

			direction := DirectionPass
			if r.Intn(100) < 70 {
				direction = DirectionLike
			}

			// guarantee a reciprocal like every 3rd pair
			if counter%3 == 0 {
				direction = DirectionLike
				recip := Swipe{ActorID: users[j].ID, TargetID: users[i].ID, Direction: DirectionLike}
				if err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
				}).Create(&recip).Error; err != nil {
					return fmt.Errorf("failed to seed swipe: %w", err)
				}
			}

			swipe := Swipe{ActorID: users[i].ID, TargetID: users[j].ID, Direction: direction}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
			}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			counter++
		}
	}
	log.Printf("Seeded %d swipes.", counter)

	return nil
}
