/*
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/comcast/pdumetrics/buildinfo"
	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/config"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/exporter"
	"github.com/comcast/pdumetrics/logger"
	"github.com/comcast/pdumetrics/rules"
	"github.com/comcast/pdumetrics/snmp"
	"github.com/comcast/pdumetrics/temperature"
	"github.com/comcast/pdumetrics/valuestore"
	pdu_vault "github.com/comcast/pdumetrics/vault"
	"go.uber.org/zap"

	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	app = "pdumetrics"
)

var (
	a = kingpin.New(app, "Dell rack PDU temperature and humidity sensor exporter")

	snmpPort           = a.Flag("snmp.port", "SNMP agent port").Default("161").Envar("SNMP_PORT").Uint16()
	snmpVersion        = a.Flag("snmp.version", "SNMP version").PlaceHolder("[1|2c]").Default("2c").Envar("SNMP_VERSION").String()
	snmpCommunity      = a.Flag("snmp.community", "SNMP community used when no credential profile is given").Default("public").Envar("SNMP_COMMUNITY").String()
	snmpTimeout        = a.Flag("snmp.timeout", "SNMP request timeout").Default("5s").Envar("SNMP_TIMEOUT").Duration()
	snmpRetries        = a.Flag("snmp.retries", "SNMP request retries").Default("1").Envar("SNMP_RETRIES").Int()
	snmpMaxRepetitions = a.Flag("snmp.max-repetitions", "max-repetitions of SNMPv2c bulk walks").Default("10").Envar("SNMP_MAX_REPETITIONS").Uint32()
	rulesFile          = a.Flag("rules.file", "YAML file with temperature and humidity check rules").Default("").Envar("RULES_FILE").String()
	storePath          = a.Flag("store.path", "BoltDB file keeping temperature trend state, kept in memory if empty").Default("").Envar("STORE_PATH").String()
	logLevel           = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod          = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath        = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/pdumetrics").Envar("LOG_FILE_PATH").String()
	logFileMaxSize     = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").String()
	logFileMaxBackups  = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").String()
	logFileMaxAge      = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").String()
	vectorEndpoint     = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()
	vaultAddr          = a.Flag("vault.addr", "Vault instance address to get SNMP communities from").Default("https://vault.com").Envar("VAULT_ADDRESS").String()
	vaultRoleId        = a.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId      = a.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	vaultCACert        = a.Flag("vault.ca-cert", "PEM file with the CA certificate of the Vault instance").Default("").Envar("VAULT_CACERT").String()
	_                  = common.CredentialProf(a.Flag("credentials.profiles",
		`profile(s) with all necessary parameters to obtain the SNMP community from secrets backend, i.e.
  --credentials.profiles="
    profiles:
      - name: profile1
        mountPath: "kv2"
        path: "path/to/secret"
        communityField: "community"
      ...
  "
--credentials.profiles='{"profiles":[{"name":"profile1","mountPath":"kv2","path":"path/to/secret","communityField":"community"},...]}'`))

	serveCmd     = a.Command("serve", "run the HTTP exporter").Default()
	exporterPort = serveCmd.Flag("port", "exporter port").Default("10023").Envar("EXPORTER_PORT").String()

	checkCmd     = a.Command("check", "check one sensor and print the plugin output, the exit code is the check state")
	checkTarget  = checkCmd.Flag("target", "PDU address").Required().String()
	checkPlugin  = checkCmd.Flag("plugin", "plugin name, temp and humidity are accepted as short names").Required().String()
	checkItem    = checkCmd.Flag("item", "sensor name").Required().String()
	checkProfile = checkCmd.Flag("credential-profile", "credential profile of the SNMP community").Default("").String()

	discoverCmd     = a.Command("discover", "list the sensors of a PDU")
	discoverTarget  = discoverCmd.Flag("target", "PDU address").Required().String()
	discoverPlugins = discoverCmd.Flag("plugins", "comma separated plugin names, all if empty").Default("").String()
	discoverProfile = discoverCmd.Flag("credential-profile", "credential profile of the SNMP community").Default("").String()

	versionCmd = a.Command("version", "print build information")

	log *zap.Logger

	vault *pdu_vault.Vault
)

var wg = sync.WaitGroup{}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	a.HelpFlag.Short('h')
	a.Version(buildinfo.Info.String())

	cmd, err := a.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("error parsing argument flags - %s", err.Error()))
	}

	if cmd == versionCmd.FullCommand() {
		if err := buildinfo.Print(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	if _, err := snmp.ParseVersion(*snmpVersion); err != nil {
		panic(err)
	}

	config.NewConfig(&config.Config{
		SNMPPort:           *snmpPort,
		SNMPVersion:        *snmpVersion,
		SNMPTimeout:        *snmpTimeout,
		SNMPRetries:        *snmpRetries,
		SNMPMaxRepetitions: *snmpMaxRepetitions,
		Community:          *snmpCommunity,
	})

	if err := initLogger(hostname, cmd != serveCmd.FullCommand()); err != nil {
		panic(err)
	}
	log = zap.L()
	defer logger.Flush()

	ruleSet, err := rules.Load(*rulesFile)
	if err != nil {
		log.Error("failed loading rules", zap.Error(err), zap.String("rules_file", *rulesFile))
		os.Exit(int(checkStateUnknown))
	}

	var store valuestore.Store = valuestore.NewMemory()
	if *storePath != "" {
		bolt, err := valuestore.OpenBolt(*storePath)
		if err != nil {
			log.Error("failed opening value store", zap.Error(err), zap.String("store_path", *storePath))
			os.Exit(int(checkStateUnknown))
		}
		defer bolt.Close()
		store = bolt
	}

	registry := rackpdu.NewRegistry(temperature.NewChecker(store))

	// configure vault client if vaultRoleId & vaultSecretId are set
	if *vaultRoleId != "" && *vaultSecretId != "" {
		startVault(ctx)
	}

	switch cmd {
	case checkCmd.FullCommand():
		code := runCheck(ctx, registry, ruleSet, os.Stdout)
		cancel()
		wg.Wait()
		logger.Flush()
		os.Exit(code)
	case discoverCmd.FullCommand():
		code := runDiscover(ctx, registry, os.Stdout)
		cancel()
		wg.Wait()
		logger.Flush()
		os.Exit(code)
	default:
		serve(cancel, registry, ruleSet)
	}
}

// initLogger sets up the global logger. One-shot commands log to stderr.
func initLogger(hostname string, oneShot bool) error {
	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if err != nil {
			return err
		}
		if !fd.IsDir() {
			return fmt.Errorf("%s is not a directory", *logFilePath)
		}
	}

	logfileMaxSize, err := strconv.Atoi(*logFileMaxSize)
	if err != nil {
		return fmt.Errorf("error converting arg --log.file-max-size to int - %s", err.Error())
	}

	logfileMaxBackups, err := strconv.Atoi(*logFileMaxBackups)
	if err != nil {
		return fmt.Errorf("error converting arg --log.file-max-backups to int - %s", err.Error())
	}

	logfileMaxAge, err := strconv.Atoi(*logFileMaxAge)
	if err != nil {
		return fmt.Errorf("error converting arg --log.file-max-age to int - %s", err.Error())
	}

	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    logfileMaxSize,
			MaxBackups: logfileMaxBackups,
			MaxAge:     logfileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
		Stderr:         oneShot,
	}

	if err := logger.Initialize(app, hostname, logConfig); err != nil {
		return fmt.Errorf("error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s log_file_max_size=%d log_file_max_backups=%d log_file_max_age=%d - err=%s",
			*logMethod, *vectorEndpoint, *logFilePath, logfileMaxSize, logfileMaxBackups, logfileMaxAge, err.Error())
	}

	if *logMethod == "vector" {
		zap.L().Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("vector_endpoint", *vectorEndpoint))
	} else if *logMethod == "file" {
		zap.L().Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("log_file_path", *logFilePath),
			zap.Int("log_file_max_size", logfileMaxSize),
			zap.Int("log_file_max_backups", logfileMaxBackups),
			zap.Int("log_file_max_age", logfileMaxAge))
	}
	return nil
}

func startVault(ctx context.Context) {
	params := pdu_vault.Parameters{
		Address:         *vaultAddr,
		ApproleRoleID:   *vaultRoleId,
		ApproleSecretID: *vaultSecretId,
	}
	if *vaultCACert != "" {
		pem, err := os.ReadFile(*vaultCACert)
		if err != nil {
			log.Error("failed reading vault ca certificate", zap.Error(err), zap.String("vault_ca_cert", *vaultCACert))
			return
		}
		params.CACertBytes = pem
	}

	var err error
	vault, err = pdu_vault.NewVaultAppRoleClient(params)
	if err != nil {
		log.Error("failed initializing vault client", zap.Error(err),
			zap.String("vault_address", *vaultAddr),
			zap.String("vault_role_id", *vaultRoleId))
		return
	}

	// communities are looked up through vault once a profile asks for them
	common.Communities.Vault = vault

	// start go routine to continuously renew vault token
	wg.Add(1)
	go vault.RenewToken(ctx, &wg)
}

// redetect runs detection against an ignored device with the plugins it was
// scraped with.
func redetect(registry rackpdu.Registry, ruleSet rules.Rules) common.Redetector {
	return func(ctx context.Context, d common.IgnoredDevice) error {
		plugins, err := registry.Select(strings.Join(d.Plugins, ","))
		if err != nil {
			return err
		}
		exp, err := exporter.NewExporter(ctx, d.Name, d.CredentialProfile, plugins, exporter.WithRules(ruleSet))
		if err != nil {
			return err
		}
		_, err = exp.Discover()
		return err
	}
}
