package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	darwin "github.com/darwin-filters/darwin-go"
	"github.com/darwin-filters/darwin-go/config"
	"github.com/darwin-filters/darwin-go/protocol"
)

type testStatus int

const (
	statusPassed testStatus = iota
	statusFailed
	statusSkipped
)

func run(c *cli.Context) error {
	suite, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.Out = os.Stdout
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	if c.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}

	displayTime := c.Bool("time")
	reg := metrics.NewRegistry()

	var passed, failed, skipped int
	for _, tc := range suite.Tests {
		switch runTest(logger, reg, tc, displayTime) {
		case statusPassed:
			passed++
		case statusFailed:
			failed++
		case statusSkipped:
			skipped++
		}
	}

	if displayTime {
		reg.Each(func(name string, i interface{}) {
			if t, ok := i.(metrics.Timer); ok {
				logger.Infof("%s: count=%d mean=%.2fms max=%.2fms",
					name, t.Count(), t.Mean()/float64(time.Millisecond), float64(t.Max())/float64(time.Millisecond))
			}
		})
	}

	logger.Infof("suite finished: %d passed, %d failed, %d not running", passed, failed, skipped)
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d test(s) failed", failed), 1)
	}
	return nil
}

func runTest(logger *logrus.Logger, reg metrics.Registry, tc config.TestConfig, displayTime bool) testStatus {
	logger.Debugf("%s filter: tests will begin", tc.FilterName)

	// run_tests.py answers back by default even though the client itself
	// defaults to no response.
	rtName := tc.ResponseType
	if rtName == "" {
		rtName = "back"
	}
	responseType, err := protocol.ParseResponseType(rtName)
	if err != nil {
		logger.Errorf("%s filter: %v", tc.FilterName, err)
		return statusFailed
	}

	client, err := darwin.Connect(darwin.Config{
		SocketType: tc.SocketType,
		SocketPath: tc.SocketPath,
		SocketHost: tc.SocketHost,
		SocketPort: tc.SocketPort,
		Timeout:    tc.ClientTimeout(),
		Verbose:    tc.Verbose,
		Logger:     logger,
	})
	if err != nil {
		if errors.Is(err, darwin.ErrConnection) {
			logger.Warnf("%s filter: [NOT RUNNING]", tc.FilterName)
			return statusSkipped
		}
		logger.Errorf("%s filter: %v", tc.FilterName, err)
		return statusFailed
	}
	defer client.Close()

	opts := darwin.CallOptions{
		Filter:       tc.FilterName,
		FilterCode:   tc.FilterCode,
		ResponseType: responseType,
	}

	ok := true
	if tc.CallArgs != nil {
		ok = runCall(logger, reg, client, tc, opts) && ok
	}
	if tc.BulkCallArgs != nil {
		ok = runBulkCall(logger, reg, client, tc, opts) && ok
	}

	if !ok {
		logger.Errorf("%s filter: [NOT OK]", tc.FilterName)
		return statusFailed
	}
	logger.Infof("%s filter: [OK]", tc.FilterName)
	return statusPassed
}

func runCall(logger *logrus.Logger, reg metrics.Registry, client *darwin.Client, tc config.TestConfig, opts darwin.CallOptions) bool {
	logger.Debugf("%s filter: calling call function", tc.FilterName)

	start := time.Now()
	result, err := client.Call(tc.CallArgs, opts)
	metrics.GetOrRegisterTimer(tc.FilterName+".call", reg).UpdateSince(start)

	if err != nil {
		logger.Errorf("%s filter: call function: %v", tc.FilterName, err)
		return false
	}

	if tc.ExpectNoResult {
		if result != nil {
			logger.Debugf("%s filter: call function: expected no result, got certitude %d",
				tc.FilterName, result.Certitude)
			return false
		}
		return true
	}

	if tc.ExpectedCallResult != nil {
		if result == nil {
			logger.Debugf("%s filter: call function: expected certitude %d, got no result",
				tc.FilterName, *tc.ExpectedCallResult)
			return false
		}
		if result.Certitude != *tc.ExpectedCallResult {
			logger.Debugf("%s filter: call function: expected result not matching: %d != %d",
				tc.FilterName, *tc.ExpectedCallResult, result.Certitude)
			return false
		}
	}
	return true
}

func runBulkCall(logger *logrus.Logger, reg metrics.Registry, client *darwin.Client, tc config.TestConfig, opts darwin.CallOptions) bool {
	logger.Debugf("%s filter: calling bulk_call function", tc.FilterName)

	start := time.Now()
	results, err := client.BulkCall(tc.BulkCallArgs, opts)
	metrics.GetOrRegisterTimer(tc.FilterName+".bulk_call", reg).UpdateSince(start)

	if err != nil {
		logger.Errorf("%s filter: bulk_call function: %v", tc.FilterName, err)
		return false
	}

	if tc.ExpectedBulkResults == nil {
		return true
	}

	if len(results) != len(tc.ExpectedBulkResults) {
		logger.Debugf("%s filter: bulk_call function: expected %d results, got %d",
			tc.FilterName, len(tc.ExpectedBulkResults), len(results))
		return false
	}
	for i, expected := range tc.ExpectedBulkResults {
		if results[i].Certitude != expected {
			logger.Debugf("%s filter: bulk_call function: result %d not matching: %d != %d",
				tc.FilterName, i, expected, results[i].Certitude)
			return false
		}
	}
	return true
}
