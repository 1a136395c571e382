package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/packfile"
)

func newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack FILE",
		Short: "Decode a packfile and list its objects",
		Long: `Decode a packfile and print one line per object, in pack order.  A FILE
of "-" reads the packfile from standard input.  Delta objects are not
supported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			p, err := packfile.Decode(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var size uint64
			for _, obj := range p.Objects {
				size += uint64(obj.Size())
				fmt.Fprintln(out, object.Describe(obj))
			}
			fmt.Fprintf(out, "%s objects (%s unique), %s packed, %s unpacked\n",
				humanize.Comma(int64(len(p.Objects))),
				humanize.Comma(int64(len(p.Map()))),
				humanize.Bytes(uint64(len(data))),
				humanize.Bytes(size))
			return nil
		},
	}
}
