package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zooyer/dxf2elmt/config"
	"github.com/zooyer/dxf2elmt/convert"
)

var (
	opts       = convert.DefaultOptions()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dxf2elmt [flags] <file.dxf>...",
	Short: "Convert DXF drawings to QElectroTech elements",
	Long: `Convert DXF drawings into QElectroTech element definitions (.elmt).

Each input is written next to itself with the .elmt extension.

Examples:
  dxf2elmt relay.dxf                    # write relay.elmt
  dxf2elmt -v relay.dxf > relay.elmt    # print the element instead
  dxf2elmt -i -s 40 *.dxf               # finer splines, write a .log report per file
  dxf2elmt serve --addr :8080           # HTTP batch conversion`,
	Version:       "0.1.0",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&opts.SplineStep, config.FlagSplineStep, "s", convert.DefaultSplineStep, "samples per spline segment")
	flags.Float64VarP(&opts.PixelsPerMM, config.FlagPixelsPerMM, "p", convert.DefaultPixelsPerMM, "pixels per millimetre")
	flags.BoolVarP(&opts.Verbose, config.FlagVerbose, "v", false, "print the element to stdout instead of writing a file")
	flags.BoolVarP(&opts.Info, config.FlagInfo, "i", false, "print conversion statistics and write a .log report")
	flags.BoolVarP(&opts.DynamicText, config.FlagDynamicText, "d", false, "emit texts as dynamic_text")
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
}

// loadConfig 读取配置文件并合并到 opts，命令行显式设置的参数优先
func loadConfig(cmd *cobra.Command) (*config.File, error) {
	if configPath == "" {
		return nil, nil
	}
	file, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	file.Apply(&opts, func(name string) bool {
		return cmd.Flags().Changed(name)
	})
	return file, nil
}

func elmtPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".elmt"
}

func runConvert(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	var failed int
	for _, input := range args {
		if err := convertOne(input, opts); err != nil {
			fmt.Printf("转换失败: %s: %v\n", input, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func convertOne(input string, opts convert.Options) error {
	opts.Name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	res, err := convert.ConvertFile(input, opts)
	if err != nil {
		if errors.Is(err, convert.ErrEmptyDrawing) {
			return fmt.Errorf("没有可转换的图元: %w", err)
		}
		return err
	}

	if opts.Verbose {
		if _, err = res.Definition.WriteTo(os.Stdout); err != nil {
			return err
		}
	} else {
		output := elmtPath(input)
		if err = os.WriteFile(output, []byte(res.Definition.String()), 0644); err != nil {
			return err
		}
		fmt.Println("写入文件:", output)
	}

	if opts.Info {
		report := summary(input, res)
		fmt.Print(report)
		logFile := strings.TrimSuffix(input, filepath.Ext(input)) + ".log"
		if err = writeLog(logFile, report, res); err != nil {
			return err
		}
		fmt.Println("写入日志:", logFile)
	}

	return nil
}
