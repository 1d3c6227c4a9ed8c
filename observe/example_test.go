package observe_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/agentguard/observe"
)

func ExampleNewObserver() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "agentguard",
		Version:     "1.0.0",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer obs.Shutdown(context.Background())

	fmt.Println(obs.Logger() != nil)
	// Output:
	// true
}

func ExampleConfig_Validate() {
	cfg := observe.Config{ServiceName: ""}
	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrMissingServiceName))
	// Output:
	// true
}

func ExampleOp_SpanName() {
	fmt.Println(observe.Op{Name: "authenticate"}.SpanName())
	fmt.Println(observe.Op{Component: "token", Name: "decode"}.SpanName())
	// Output:
	// auth.authenticate
	// token.decode
}

func ExampleInstrumenter_Run() {
	inst := observe.NopInstrumenter()
	err := inst.Run(context.Background(), observe.Op{Name: "authorize"}, func(ctx context.Context) error {
		return errors.New("forbidden")
	})
	fmt.Println(err)
	// Output:
	// forbidden
}

func ExampleParseLogLevel() {
	fmt.Println(observe.ParseLogLevel("warn"))
	fmt.Println(observe.ParseLogLevel("nonsense"))
	// Output:
	// warn
	// info
}

func ExampleNewLoggerWithOptions() {
	logger := observe.NewLoggerWithOptions(observe.LoggerOptions{Level: "error", Writer: os.Stdout})
	logger.Info(context.Background(), "filtered out")
	fmt.Println("done")
	// Output:
	// done
}
