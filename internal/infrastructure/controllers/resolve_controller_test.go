//go:build unit

package controllers_test

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/controllers"
	"github.com/rios0rios0/rolldeps/test/domain/commanddoubles"
)

func TestResolveControllerExecute(t *testing.T) {
	t.Run("should pass the partial hash and the inherited flags", func(t *testing.T) {
		// given
		t.Setenv(entities.UpstreamCheckoutPathEnv, "")
		stub := &commanddoubles.StubResolveCommand{}
		controller := controllers.NewResolveController(stub, entities.DefaultSettings)
		bind := controller.GetBind()

		//nolint:exhaustruct // Minimal Command initialization with required fields only
		root := &cobra.Command{Use: "rolldeps", SilenceUsage: true, SilenceErrors: true}
		controllers.AddGlobalFlags(root)
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		sub := &cobra.Command{Use: bind.Use, RunE: controller.Execute}
		controller.AddFlags(sub)
		root.AddCommand(sub)
		root.SetOut(io.Discard)
		root.SetArgs([]string{
			"resolve",
			"--config", writeConfig(t, "{}\n"),
			"-g", "abcd1234",
			"--skia-git-path", "/src/skia",
			"--git-path", "/opt/git/bin/git",
		})

		// when
		err := root.Execute()

		// then
		require.NoError(t, err)
		require.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, entities.RevisionRequest{PartialHash: "abcd1234"}, stub.LastRequest)
		assert.Equal(t, "/src/skia", stub.LastSettings.UpstreamCheckoutPath)
		assert.Equal(t, "/opt/git/bin/git", stub.LastSettings.Git)
	})
}
