// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
)

const (
	defaultAddr           = "localhost:10800"
	defaultPageSize       = 1024
	defaultConnectTimeout = 10 * time.Second
	defaultCloseTimeout   = 5 * time.Second
)

// Config is the ignitequery configuration. Values come from the TOML file,
// then IGNITE_* environment variables, then command line flags.
type Config struct {
	Addr           string `toml:"addr"`
	Cache          string `toml:"cache"`
	CacheID        int32  `toml:"cache_id"`
	PageSize       int32  `toml:"page_size"`
	LimitPages     int    `toml:"limit_pages"`
	ConnectTimeout string `toml:"connect_timeout"`
	Compact        bool   `toml:"compact"`
	MetricsAddr    string `toml:"metrics_addr"`
	LogLevel       string `toml:"log_level"`
}

// cacheID returns the id of the configured cache. A cache name wins over a
// numeric id.
func (c Config) cacheID() int32 {
	if c.Cache != "" {
		return driver.CacheID(c.Cache)
	}
	return c.CacheID
}

func (c Config) connectTimeout() (time.Duration, error) {
	if c.ConnectTimeout == "" {
		return defaultConnectTimeout, nil
	}
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil {
		return 0, errors.Wrap(err, "invalid connect_timeout")
	}
	return d, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}
}

// loadConfig reads the TOML file at path, if any, after loading envFiles into
// the environment. Without envFiles a .env file in the working directory is
// loaded when it exists.
func loadConfig(path string, envFiles ...string) (Config, error) {
	var cfg Config

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return cfg, errors.Wrap(err, "loading env files")
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, errors.Wrap(err, "loading .env")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "reading config")
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("IGNITE_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("IGNITE_CACHE"); ok {
		c.Cache = v
	}
	if v, ok := os.LookupEnv("IGNITE_CACHE_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return errors.Wrap(err, "invalid IGNITE_CACHE_ID")
		}
		c.CacheID = int32(id)
	}
	if v, ok := os.LookupEnv("IGNITE_PAGE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return errors.Wrap(err, "invalid IGNITE_PAGE_SIZE")
		}
		c.PageSize = int32(n)
	}
	if v, ok := os.LookupEnv("IGNITE_CONNECT_TIMEOUT"); ok {
		c.ConnectTimeout = v
	}
	if v, ok := os.LookupEnv("IGNITE_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := os.LookupEnv("IGNITE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}
