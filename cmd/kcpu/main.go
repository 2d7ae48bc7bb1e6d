// Command kcpu is the reference host for the microcode-driven CPU
// simulator: assemble .ks sources, run .kb images, and disassemble them
// back to text.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kcpu/asm"
	"kcpu/config"
	"kcpu/disasm"
	"kcpu/hw"
	"kcpu/kcspec"
	"kcpu/vm"
)

func main() {
	root := &cobra.Command{
		Use:   "kcpu",
		Short: "assemble, run, and disassemble kcpu programs",
	}
	root.AddCommand(newAssembleCmd(), newRunCmd(), newDisasmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kcpu:", err)
		os.Exit(1)
	}
}

func newAssembleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "assemble [source.ks]",
		Short: "compile a .ks source file into a .kb image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			words, err := asm.Assemble(string(src))
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".kb"
			}
			return writeImage(output, words)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .kb path (default: <source>.kb)")
	return cmd
}

func writeImage(path string, words []hw.Word) error {
	raw := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(raw[i*2:], w)
	}
	return os.WriteFile(path, raw, 0o644)
}

func newRunCmd() *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a .kb BIOS/program pair to completion or a clock limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			bios, err := config.LoadImage(cfg.BiosPath)
			if err != nil {
				return err
			}
			prog, err := config.LoadImage(cfg.ProgPath)
			if err != nil {
				return err
			}
			log, err := cfg.Logger()
			if err != nil {
				return err
			}

			m := vm.NewWithLogger(bios, prog, log)

			var limit *uint64
			if cfg.MaxClocks > 0 {
				limit = &cfg.MaxClocks
			}
			timedOut := m.Run(limit)

			fmt.Printf("state=%s clocks=%d\n", m.State(), m.TotalClocks())
			if timedOut {
				return fmt.Errorf("kcpu: hit max-clocks (%d) before halting", cfg.MaxClocks)
			}
			return nil
		},
	}
	cfg.Bind(cmd.Flags())
	return cmd
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm [image.kb]",
		Short: "disassemble a .kb image back to assembly text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := config.LoadImage(args[0])
			if err != nil {
				return err
			}
			src := disasm.NewSliceSource(words)
			rom := kcspec.DefaultROM()
			stepper := disasm.NewSteppingDisassembler(rom)

			for {
				ctx, err := stepper.Step(src)
				if err != nil {
					if de, ok := err.(*disasm.Error); ok && de.Kind == disasm.UnexpectedEndOfStream {
						return nil
					}
					return err
				}
				printInstruction(ctx)
			}
		},
	}
	return cmd
}

func printInstruction(ctx *disasm.Context) {
	fmt.Printf("%s", ctx.Alias.Name)
	for i, a := range ctx.Args {
		if i == 0 {
			fmt.Printf(" %s", a)
		} else {
			fmt.Printf(", %s", a)
		}
	}
	fmt.Println()
}
