// Command bootmgrctl is a demo CLI frontend exercising BootMgr end to
// end. It is an external collaborator per §1 ("the terminal or graphical
// frontend... is out of scope"), kept deliberately thin: all boot-entry
// logic lives in pkg/bootmgr and below.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/bootmgr"
	"github.com/efiboot/bootmgr-go/pkg/firmware/hostfw"
)

var (
	debug   bool
	scratch string
)

func newMgr() (*bootmgr.BootMgr, error) {
	logger := bootlog.New("bootmgrctl", debug)
	firmwareCap := hostfw.NewCapability(scratch, logger)
	return bootmgr.New(firmwareCap, bootmgr.DefaultParsers, logger)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bootmgrctl",
		Short: "Inspect and dispatch UEFI boot entries",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&scratch, "scratch-dir", "/var/lib/bootmgrctl", "writable staging directory")

	root.AddCommand(newListCmd(), newLoadCmd(), newDefaultCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered boot entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newMgr()
			if err != nil {
				return err
			}
			for i, e := range mgr.List() {
				marker := " "
				if i == mgr.DefaultIndex() {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, e.PreferredTitle(i, true))
			}
			return nil
		},
	}
}

func newLoadCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the entry at the given index and print its image handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newMgr()
			if err != nil {
				return err
			}
			result, err := mgr.Load(index)
			if err != nil {
				return err
			}
			if !result.Image.IsZero() {
				fmt.Println(result.Image.String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "entry index to load")
	return cmd
}

func newDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print the default entry index and BootConfig timeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newMgr()
			if err != nil {
				return err
			}
			fmt.Printf("default_index=%d timeout_secs=%d\n", mgr.DefaultIndex(), mgr.TimeoutSecs())
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bootmgrctl:", err)
		os.Exit(1)
	}
}
