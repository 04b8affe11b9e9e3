// encuesta 命令行：启动后端、终端问卷和会话管理
package main

import (
	"os"

	"github.com/encuestaia/backend/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
