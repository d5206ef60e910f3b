package internal

import (
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/controllers"
)

// AppInternal is the wired application: the root roll controller plus the
// subcommand controllers.
type AppInternal struct {
	root        *controllers.RollController
	controllers []entities.Controller
}

// NewAppInternal creates the AppInternal from the registered controllers.
func NewAppInternal(root *controllers.RollController, subcommands *[]entities.Controller) *AppInternal {
	return &AppInternal{root: root, controllers: *subcommands}
}

// GetRootController returns the controller behind the root command.
func (it *AppInternal) GetRootController() *controllers.RollController {
	return it.root
}

// GetControllers returns the subcommand controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
