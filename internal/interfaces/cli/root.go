package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

// EnvServerURL 客户端命令使用的后端地址
const EnvServerURL = "ENCUESTA_SERVER_URL"

// options 全局选项
type options struct {
	serverURL string
	timeout   time.Duration
}

func (o *options) client() *APIClient {
	return NewAPIClient(o.serverURL, o.timeout)
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "encuesta",
		Short: "Diagnóstico conversacional de automatización con IA",
		Long: `encuesta.ia entrevista a un responsable de empresa, detecta tareas
repetitivas con ayuda de un modelo de lenguaje y genera un informe con el
ahorro estimado al automatizarlas.`,
		SilenceUsage: true,
	}

	defaultURL := os.Getenv(EnvServerURL)
	if defaultURL == "" {
		defaultURL = "http://localhost:3001"
	}
	root.PersistentFlags().StringVar(&opts.serverURL, "server", defaultURL, "Backend URL (env "+EnvServerURL+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout, must cover report generation")

	root.AddCommand(
		newServeCommand(),
		newSurveyCommand(opts),
		newSessionsCommand(opts),
		newExportCommand(opts),
	)
	return root
}

// Execute 运行 CLI
func Execute() error {
	return NewRootCommand().Execute()
}
