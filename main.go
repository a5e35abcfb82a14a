package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ratebridge",
	Short:   "Shipment rate bridge - ShipEngine rates with DynamoDB persistence",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the HTTP routes behind API Gateway on AWS Lambda",
	RunE:  runLambda,
}

func init() {
	rootCmd.AddCommand(serveCmd, lambdaCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	app.logger.Info("Starting rate bridge",
		zap.Int("port", app.cfg.Port),
		zap.String("adapter", app.cfg.RateAdapter),
		zap.String("version", app.cfg.Version),
	)

	if err := app.server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runLambda(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gin.SetMode(gin.ReleaseMode)
	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	adapter := ginadapter.New(app.server.Engine())
	app.logger.Info("Starting rate bridge lambda handler", zap.String("adapter", app.cfg.RateAdapter))

	lambda.StartWithOptions(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	}, lambda.WithContext(ctx))
	return nil
}
