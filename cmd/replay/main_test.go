package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ReplayCmdTestSuite struct {
	suite.Suite
	tempDir string
	out     *bytes.Buffer
}

func TestReplayCmdSuite(t *testing.T) {
	suite.Run(t, new(ReplayCmdTestSuite))
}

func (suite *ReplayCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.out = &bytes.Buffer{}
}

func (suite *ReplayCmdTestSuite) run(args ...string) error {
	app := newApp()
	app.Writer = suite.out
	app.ErrWriter = suite.out

	return app.Run(context.Background(), append([]string{"replay"}, args...))
}

func (suite *ReplayCmdTestSuite) TestSchemaToFile() {
	output := filepath.Join(suite.tempDir, "config", "replay-config.json")

	suite.Require().NoError(suite.run("schema", "--output", output))

	content, err := os.ReadFile(output)
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal(content, &schema))
	suite.Equal("replay-config", schema["title"])
}

func (suite *ReplayCmdTestSuite) TestSchemaToStdout() {
	suite.Require().NoError(suite.run("schema"))
	suite.Contains(suite.out.String(), "replay-config")
}

func (suite *ReplayCmdTestSuite) TestProviders() {
	suite.Require().NoError(suite.run("providers"))

	output := suite.out.String()
	suite.Contains(output, "binance")
	suite.Contains(output, "polygon")
	suite.Contains(output, "requires POLYGON_API_KEY")
}

func (suite *ReplayCmdTestSuite) TestRunFromCSV() {
	dataPath := filepath.Join(suite.tempDir, "bars.csv")
	bars := "time,symbol,open,high,low,close,volume\n" +
		"2024-01-02 00:00:00,AAPL,10,11,9,10.5,100\n" +
		"2024-01-03 00:00:00,AAPL,11,12,10,11.5,200\n"
	suite.Require().NoError(os.WriteFile(dataPath, []byte(bars), 0o600))

	configPath := filepath.Join(suite.tempDir, "run.yaml")
	cfg := "symbols: [AAPL]\n" +
		"start_date: 2024-01-01\n" +
		"timeframe: day\n" +
		"initial_cash: 10000\n" +
		"data:\n  source: file\n  path: " + dataPath + "\n" +
		"strategy:\n  name: buy_and_hold\n" +
		"results_path: " + filepath.Join(suite.tempDir, "results") + "\n" +
		"log_level: error\n"
	suite.Require().NoError(os.WriteFile(configPath, []byte(cfg), 0o600))

	suite.Require().NoError(suite.run("run", "--log-level", "error", configPath))

	output := suite.out.String()
	suite.Contains(output, "finished after 2 ticks")
	suite.Contains(output, "audit.parquet")
}

func (suite *ReplayCmdTestSuite) TestRunNeedsConfig() {
	suite.Error(suite.run("run"))
}

func (suite *ReplayCmdTestSuite) TestRunRejectsMissingFile() {
	suite.Error(suite.run("run", "--config", filepath.Join(suite.tempDir, "missing.yaml")))
}
