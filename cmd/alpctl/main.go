package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/d7alp/internal/alp"
	"github.com/danmuck/d7alp/internal/alp/dash7"
	v12 "github.com/danmuck/d7alp/internal/alp/dash7/v12"
	"github.com/danmuck/d7alp/internal/alp/varint"
	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrPartialDecode is returned in strict mode when a command decodes only
// partially.
var ErrPartialDecode = errors.New("partial decode")

// Protocol revisions accepted by the iface command.
const (
	RevisionBase = "base"
	RevisionV12  = "1.2"
)

type app struct {
	cfg      cliConfig
	out      io.Writer
	config   string
	format   string
	strict   bool
	revision string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{cfg: defaultCLIConfig(), out: out}

	root := &cobra.Command{
		Use:           "alpctl",
		Short:         "encode and decode DASH7 ALP commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.config, "config", "", "alpctl config path")
	root.PersistentFlags().StringVar(&a.format, "format", "", "output format: json|text|yaml")
	root.PersistentFlags().BoolVar(&a.strict, "strict", false, "exit non-zero on a partial decode")

	root.AddCommand(&cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode each argument as an ALP command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decode(args)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "varint <n>...",
		Short: "Print the varint encoding of each integer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.varint(args)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "size <hex>",
		Short: "Report the value and size of a leading varint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.size(args[0])
		},
	})

	iface := &cobra.Command{
		Use:   "iface",
		Short: "Decode a D7ASP interface operand",
	}
	iface.PersistentFlags().StringVar(&a.revision, "revision", RevisionBase, "protocol revision: base|1.2")
	for _, kind := range []string{"config", "status"} {
		iface.AddCommand(&cobra.Command{
			Use:   kind + " <hex>",
			Short: "Decode a D7ASP interface " + kind,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.iface(kind, args[0])
			},
		})
	}
	root.AddCommand(iface)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	logs.ConfigureRuntime()

	if a.config != "" {
		cfg, err := loadCLIConfig(a.config)
		if err != nil {
			return err
		}
		a.cfg = cfg
		logs.SetOutput(os.Stderr, cfg.logConfig())
		logs.Debugf("alpctl: loaded config %s", a.config)
	}
	if cmd.Flags().Changed("format") {
		format, err := parseFormat(a.format)
		if err != nil {
			return err
		}
		a.cfg.Format = format
	}
	if cmd.Flags().Changed("strict") {
		a.cfg.Strict = a.strict
	}
	logs.Tracef("alpctl: format=%s strict=%v", a.cfg.Format, a.cfg.Strict)
	return nil
}

func parseHex(arg string) ([]byte, error) {
	clean := strings.Join(strings.Fields(arg), "")
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse hex %q: %w", arg, err)
	}
	return raw, nil
}

func (a *app) decode(args []string) error {
	partial := 0
	for _, arg := range args {
		raw, err := parseHex(arg)
		if err != nil {
			return err
		}
		report := alp.Inspect(raw)
		if report.Error != nil {
			partial++
			logs.Warnf("alpctl: %s at offset %d after %d action(s)", report.Error.Kind, report.Error.Offset, len(report.Actions))
		}
		if err := a.print(report); err != nil {
			return err
		}
	}
	if partial > 0 && a.cfg.Strict {
		return fmt.Errorf("%w: %d of %d command(s)", ErrPartialDecode, partial, len(args))
	}
	return nil
}

func (a *app) print(report alp.Report) error {
	if a.cfg.Format != FormatText {
		return a.printValue(report)
	}
	for _, v := range report.Actions {
		fmt.Fprintln(a.out, v.String())
	}
	if report.Error != nil {
		fmt.Fprintf(a.out, "error %s @%d: %s\n", report.Error.Kind, report.Error.Offset, report.Error.Message)
	}
	return nil
}

func erase[T any](v T, n int, err error) (any, int, error) {
	return v, n, err
}

func decodeInterface(revision, kind string, raw []byte) (any, int, error) {
	switch revision + "/" + kind {
	case RevisionBase + "/config":
		return erase(dash7.DecodeInterfaceConfiguration(raw))
	case RevisionBase + "/status":
		return erase(dash7.DecodeInterfaceStatus(raw))
	case RevisionV12 + "/config":
		return erase(v12.DecodeInterfaceConfiguration(raw))
	case RevisionV12 + "/status":
		return erase(v12.DecodeInterfaceStatus(raw))
	default:
		return nil, 0, fmt.Errorf("unknown revision %q (want base|1.2)", revision)
	}
}

func (a *app) iface(kind, arg string) error {
	raw, err := parseHex(arg)
	if err != nil {
		return err
	}
	v, n, err := decodeInterface(a.revision, kind, raw)
	if err != nil {
		return fmt.Errorf("decode interface %s: %w", kind, err)
	}
	if n < len(raw) {
		logs.Warnf("alpctl: %d trailing byte(s) after interface %s", len(raw)-n, kind)
	}
	return a.printValue(v)
}

func (a *app) printValue(v any) error {
	switch a.cfg.Format {
	case FormatText:
		_, err := fmt.Fprintf(a.out, "%+v\n", v)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func (a *app) varint(args []string) error {
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return fmt.Errorf("parse %q: %w", arg, err)
		}
		if !varint.IsValid(uint32(n)) {
			return fmt.Errorf("%d exceeds varint max %d", n, varint.Max)
		}
		fmt.Fprintf(a.out, "%d\t% X\n", n, varint.Append(nil, uint32(n)))
	}
	return nil
}

func (a *app) size(arg string) error {
	raw, err := parseHex(arg)
	if err != nil {
		return err
	}
	n, size, err := varint.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode varint: %w", err)
	}
	fmt.Fprintf(a.out, "value=%d size=%d\n", n, size)
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		logs.Errf("alpctl: %v", err)
		os.Exit(1)
	}
}
