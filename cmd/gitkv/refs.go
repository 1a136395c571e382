package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lxr/gitkv/config"
	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/repository"
)

func newRefsCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Read and write refs in the configured store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list OWNER/REPO [PREFIX]",
			Short: "List the refs of a repository",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := parseRepoArg(args[0])
				if err != nil {
					return err
				}
				prefix := "refs/"
				if len(args) == 2 {
					prefix = args[1]
				}
				return withStore(cmd, load, false, func(s repository.ReadWriter) error {
					refs, err := repository.ListRefs(cmd.Context(), s, repo, prefix)
					if err != nil {
						return err
					}
					for _, ref := range refs {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ref.ID, ref.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get OWNER/REPO REF",
			Short: "Print the object ID a ref points to",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := parseRepoArg(args[0])
				if err != nil {
					return err
				}
				return withStore(cmd, load, false, func(s repository.ReadWriter) error {
					id, err := repository.GetRef(cmd.Context(), s, repo, args[1])
					if err != nil {
						return fmt.Errorf("%s %s: %w", repo, args[1], err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set OWNER/REPO REF ID",
			Short: "Point a ref at an object",
			Long: `Point a ref at an object, creating the ref if needed.  An ID of forty
zeros deletes the ref.`,
			Args: cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := parseRepoArg(args[0])
				if err != nil {
					return err
				}
				id, err := object.DecodeID(args[2])
				if err != nil {
					return fmt.Errorf("bad object ID %q: %w", args[2], err)
				}
				return withStore(cmd, load, true, func(s repository.ReadWriter) error {
					return repository.SetRef(cmd.Context(), s, repo, args[1], id)
				})
			},
		},
	)
	return cmd
}

// withStore opens the configured store, runs fn and closes the store.
// Writes to a private in-memory store would be lost, so write refuses
// the mem backend.
func withStore(cmd *cobra.Command, load configLoader, write bool, fn func(repository.ReadWriter) error) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	if write && cfg.Store.Backend == config.BackendMem {
		return fmt.Errorf("store %q does not persist; configure a redis or leveldb store", cfg.Store.Backend)
	}
	s, closeStore, err := openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(s)
}

func parseRepoArg(s string) (repository.Repo, error) {
	owner, name, _ := strings.Cut(s, "/")
	repo, err := repository.ParseRepo(owner, name)
	if err != nil {
		return repo, fmt.Errorf("%q is not OWNER/REPO: %w", s, err)
	}
	return repo, nil
}
