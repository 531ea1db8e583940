package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"motion-overlay/src/config"
	"motion-overlay/src/controller"
	"motion-overlay/src/messages"
	"motion-overlay/src/singleinstance"
)

const requestTimeout = 3 * time.Second

type ctlOptions struct {
	jsonOutput bool
	verbose    bool
}

// sendFunc delivers one command to the resident and returns its reply text.
type sendFunc func(ctx context.Context, cmd messages.Command) (string, error)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	onStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	swatchStyle = lipgloss.NewStyle().Background(lipgloss.Color("#FF6400")).Width(2)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(0, 1)
)

func main() {
	if err := runWithArgs(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"overlayctl"}
	}
	cmd := newRootCmd(&ctlOptions{}, singleinstance.NewClient().Send)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *ctlOptions, send sendFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "overlayctl",
		Short:         "Control a running motion-overlay resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
			// SINGLEINSTANCE_PORT_* may live in the resident's .env
			_, _ = config.Load()
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	simple := func(use, short, verb string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printReply(cmd.OutOrStdout(), send, messages.Command{Verb: verb})
			},
		}
	}
	root.AddCommand(
		simple("filter", "Toggle the overlay between strong and light tint", messages.VerbFilter),
		simple("brightness", "Toggle screen brightness between full and half", messages.VerbBrightness),
		simple("disable", "Remove the overlay", messages.VerbDisable),
		newEnableCmd(send),
		newLevelCmd(send),
		newStatusCmd(opts, send),
	)
	return root
}

func newEnableCmd(send sendFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "enable [manual|sensor]",
		Short:     "Show the overlay in manual or light-sensor mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"manual", "sensor"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "manual"
			if len(args) == 1 {
				mode = args[0]
			}
			if _, err := controller.ParseMode(mode); err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), send, messages.Command{Verb: messages.VerbEnable, Arg: mode})
		},
	}
}

func newLevelCmd(send sendFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "level N",
		Short: "Set the manual level (0 strongest tint, 100 none) or adjust it with +N/-N",
		// Negative deltas look like flags.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			if len(args) != 1 {
				return fmt.Errorf("level takes exactly one argument, got %d", len(args))
			}
			arg := strings.TrimSpace(args[0])
			if _, err := strconv.Atoi(arg); err != nil {
				return fmt.Errorf("level must be an integer, got %q", args[0])
			}
			return printReply(cmd.OutOrStdout(), send, messages.Command{Verb: messages.VerbLevel, Arg: arg})
		},
	}
}

func newStatusCmd(opts *ctlOptions, send sendFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resident's overlay state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := request(send, messages.Command{Verb: messages.VerbStatus})
			if err != nil {
				return err
			}
			st, err := messages.ParseStatus(text)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func request(send sendFunc, cmd messages.Command) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	text, err := send(ctx, cmd)
	if err == singleinstance.ErrNoResident {
		return "", fmt.Errorf("motion-overlay is not running")
	}
	return text, err
}

func printReply(w io.Writer, send sendFunc, cmd messages.Command) error {
	text, err := request(send, cmd)
	if err != nil {
		return err
	}
	if text != "" {
		fmt.Fprintln(w, text)
	}
	return nil
}

type statusJSON struct {
	State           string   `json:"state"`
	Mode            string   `json:"mode"`
	Level           int      `json:"level"`
	Alpha           int      `json:"alpha"`
	Attached        bool     `json:"attached"`
	SensorAvailable bool     `json:"sensor_available"`
	Background      bool     `json:"background"`
	Missing         []string `json:"missing_permissions"`
}

func writeJSON(w io.Writer, st messages.Status) error {
	missing := st.Missing
	if missing == nil {
		missing = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statusJSON{
		State:           st.State,
		Mode:            st.Mode,
		Level:           st.Level,
		Alpha:           st.Alpha,
		Attached:        st.Attached,
		SensorAvailable: st.SensorAvailable,
		Background:      st.Background,
		Missing:         missing,
	})
}

func renderStatus(st messages.Status) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}
	flag := func(on bool, yes, no string) string {
		if on {
			return onStyle.Render(yes)
		}
		return offStyle.Render(no)
	}

	state := offStyle.Render(st.State)
	if st.Attached {
		state = lipgloss.JoinHorizontal(lipgloss.Top, swatchStyle.Render(""), " ", onStyle.Render(st.State))
	}
	perms := onStyle.Render("all granted")
	if len(st.Missing) > 0 {
		perms = warnStyle.Render("missing " + strings.Join(st.Missing, ", "))
	}

	rows := []string{
		row("overlay", state),
		row("mode", valueStyle.Render(st.Mode)),
		row("level", valueStyle.Render(fmt.Sprintf("%d%%", st.Level))),
		row("alpha", valueStyle.Render(fmt.Sprintf("%d/255", st.Alpha))),
		row("sensor", flag(st.SensorAvailable, "available", "unavailable")),
		row("background", flag(st.Background, "on", "off")),
		row("permissions", perms),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
