package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/mhusam/heartgrid/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "dataset.csv")
				convey.So(cfg.TargetColumn, convey.ShouldEqual, "target")
				convey.So(cfg.CategoricalColumns, convey.ShouldResemble,
					[]string{"sex", "cp", "fbs", "restecg", "exang", "slope", "ca", "thal"})
				convey.So(cfg.MaxGridPoints, convey.ShouldEqual, 256)
				convey.So(cfg.HistorySize, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HEARTGRID_ADDR", ":8080")
			_ = os.Setenv("HEARTGRID_DATA_PATH", "/data/heart.csv")
			_ = os.Setenv("HEARTGRID_TARGET_COLUMN", "label")
			_ = os.Setenv("HEARTGRID_MAX_GRID_POINTS", "64")
			_ = os.Setenv("HEARTGRID_HISTORY_SIZE", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "/data/heart.csv")
				convey.So(cfg.TargetColumn, convey.ShouldEqual, "label")
				convey.So(cfg.MaxGridPoints, convey.ShouldEqual, 64)
				convey.So(cfg.HistorySize, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
data_path: "heart.csv"
max_grid_points: 128
history_size: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEARTGRID_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataPath, convey.ShouldEqual, "heart.csv")
				convey.So(cfg.MaxGridPoints, convey.ShouldEqual, 128)
				convey.So(cfg.HistorySize, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_grid_points: 128
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEARTGRID_CONFIG", tmpFile)
			_ = os.Setenv("HEARTGRID_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxGridPoints, convey.ShouldEqual, 128)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("HEARTGRID_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When validation rejects a value", func() {
			_ = os.Setenv("HEARTGRID_ADDR", "")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with the validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr")
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"HEARTGRID_CONFIG",
		"HEARTGRID_ADDR",
		"HEARTGRID_LOG_LEVEL",
		"HEARTGRID_DATA_PATH",
		"HEARTGRID_TARGET_COLUMN",
		"HEARTGRID_MAX_GRID_POINTS",
		"HEARTGRID_HISTORY_SIZE",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "heartgrid-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
