package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all HTTP service registrars.
// Each service mounts its own routes on the shared /api group.
type Registrar interface {
	Register(api gin.IRouter)
}
