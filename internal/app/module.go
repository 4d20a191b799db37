package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering business module.
// Each module registers its token-gated admin routes and its public
// website routes.
type Module interface {
	RegisterRoutes(admin *gin.RouterGroup, public *gin.RouterGroup)
}
