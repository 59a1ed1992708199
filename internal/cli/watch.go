package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/index"
	"github.com/lineagekit/lineage/internal/vault"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the vault and keep the record index current",
		Long:  "Watch the vault for markdown changes, updating the person and place index as records change. Prints one JSON line per change until interrupted.",
		Run:   runWatch,
	}

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	v, _, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	ix := index.New(v)
	if err := ix.Rebuild(); err != nil {
		exitErr("index vault", err)
	}

	w, err := vault.NewWatcher(v, func(c vault.Change) {
		ix.HandleChange(c)
		b, _ := json.Marshal(map[string]string{
			"path": c.Path,
			"op":   c.Op.String(),
			"time": c.Time.Format("2006-01-02T15:04:05Z07:00"),
		})
		fmt.Println(string(b))
	})
	if err != nil {
		exitErr("watch vault", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		exitErr("watch vault", err)
	}
}
