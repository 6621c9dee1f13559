package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zooyer/dxf2elmt/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP batch conversion service",
	Long: `Serve DXF to ELMT conversion over HTTP.

Endpoints:
  GET  /api/health
  POST /api/convert        JSON {"files":[{"name":"a.dxf","data":"<base64>"}]}
  POST /api/convert/raw    DXF body, returns the .elmt document`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config or :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err = opts.Validate(); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = file.ServeAddr()
	}

	e := server.New(server.NewHandler(opts, file.MaxFiles()), file.RequestLogging())
	fmt.Printf("dxf2elmt %s listening on %s\n", rootCmd.Version, addr)
	return e.Start(addr)
}
