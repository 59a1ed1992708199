package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineage/internal/index"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed person and place records",
		Long:  "Search person and place records by name substring. Results are vault paths in index order.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("kind", "k", "person", "Record kind: person or place")
	cmd.Flags().String("parent", "", "Filter places by exact parent place name")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	parent, _ := cmd.Flags().GetString("parent")
	query := strings.Join(args, " ")

	v, _, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	ix := index.New(v)
	if err := ix.Rebuild(); err != nil {
		exitErr("index vault", err)
	}

	var paths []string
	switch kind {
	case "person":
		paths = ix.FindPersonsByName(query)
	case "place":
		if parent != "" {
			paths = ix.FindPlacesByParent(parent)
		} else {
			paths = ix.FindPlacesByName(query)
		}
	default:
		exitErr("search", fmt.Errorf("unknown kind %q", kind))
	}
	if paths == nil {
		paths = []string{}
	}

	b, _ := json.MarshalIndent(paths, "", "  ")
	fmt.Println(string(b))
}
