package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ncruces/zenity"
	"github.com/zooyer/golib/xos"
)

// 双击启动（没有任何参数）时弹出文件选择框，结束后暂停窗口
func pickFiles() ([]string, error) {
	files, err := zenity.SelectFileMultiple(
		zenity.Title("选择要转换的 DXF 文件"),
		zenity.FileFilter{Name: "DXF", Patterns: []string{"*.dxf"}, CaseFold: true},
	)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func main() {
	interactive := len(os.Args) < 2

	if interactive {
		defer xos.PauseExit()

		files, err := pickFiles()
		if err != nil {
			if !errors.Is(err, zenity.ErrCanceled) {
				fmt.Println("请把DXF文件拖入该程序上执行！")
			}
			return
		}
		os.Args = append(os.Args, files...)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if interactive {
			_ = zenity.Error(err.Error(), zenity.Title("dxf2elmt"), zenity.ErrorIcon)
			return
		}
		os.Exit(1)
	}
}
