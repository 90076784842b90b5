package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pangolin/pkg/httputil"
)

// serveCommand creates the static gallery server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [dir...]",
		Short: "Serve the compiled library and gallery over HTTP",
		Long: `Serve exposes the given directories on one HTTP server, earlier directories
taking precedence. Defaults to the configured directories (./dist and
./public) and to port $PORT or 5000.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr()
			}
			dirs := args
			if len(dirs) == 0 {
				dirs = cfg.Serve.Dirs
			}

			logger := loggerFromContext(cmd.Context())
			router := httputil.NewStaticRouter(dirs, logger)
			return httputil.ListenAndServe(cmd.Context(), addr, router, func(a net.Addr) {
				printSuccess("Serving %v", dirs)
				printKeyValue("Address", StyleLink.Render(serveURL(a)))
				printDetail("Press Ctrl+C to stop")
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")

	return cmd
}

func serveURL(a net.Addr) string {
	if tcp, ok := a.(*net.TCPAddr); ok && (tcp.IP == nil || tcp.IP.IsUnspecified()) {
		return fmt.Sprintf("http://localhost:%d", tcp.Port)
	}
	return "http://" + a.String()
}
