package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/packfile"
)

func newPackCmd() *cobra.Command {
	var (
		typeName string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "pack FILE...",
		Short: "Build a packfile from files",
		Long: `Build a version 2 packfile holding the content of each FILE as one
object, in argument order.  The packfile is written to standard output
unless --output is given.  Objects are stored whole, never as deltas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := object.ParseType(typeName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			bw := bufio.NewWriter(out)
			if err := writePack(bw, objType, args); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "blob", "object type of every file (blob, tree, commit or tag)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the packfile to this path")
	return cmd
}

func writePack(w io.Writer, objType object.Type, paths []string) error {
	pw, err := packfile.NewWriter(w, int64(len(paths)))
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := pw.Write(objType, content); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return pw.Close()
}
