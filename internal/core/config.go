package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to any of the
// Item Wars binaries. One file configures the whole deployment; each binary
// reads only the sections it needs.
type Config struct {
	// Hostname or IP address on which the game server will listen.
	Hostname string `mapstructure:"hostname"`

	Logging struct {
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
		// Full path to file to which logs will be written. Blank will write to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
	} `mapstructure:"logging"`

	GameServer struct {
		// UDP port on which the game server will listen for commands.
		Port int `mapstructure:"port"`
		// Receive timeout in milliseconds. Bounds how long the serve loop blocks
		// waiting for a datagram so that shutdown and session sweeps stay responsive.
		ReadTimeoutMs int `mapstructure:"read_timeout_ms"`
		// Minutes a session may go untouched before the garbage collector reaps
		// it. Zero disables session garbage collection entirely.
		SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
	} `mapstructure:"game_server"`

	Database struct {
		// Engine for the match archive. Options: sqlite, postgres. Blank disables
		// archival and reaped sessions are discarded.
		Engine string `mapstructure:"engine"`
		// Path to the sqlite database file (sqlite engine only).
		Filename string `mapstructure:"filename"`
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on db_host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres for item wars.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${db_name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Client struct {
		// host:port of the game server to which the client tools connect.
		ServerAddress string `mapstructure:"server_address"`
		// Period of the network tick in milliseconds. Each tick pushes the local
		// player record and pulls the full session state.
		NetworkTickMs int `mapstructure:"network_tick_ms"`
		// Period of the local physics/render tick in milliseconds.
		UpdateTickMs int `mapstructure:"update_tick_ms"`
		// Polling period while waiting for the second player to join.
		WaitPollMs int `mapstructure:"wait_poll_ms"`
		// How long a round trip may block before the tick is abandoned.
		ReplyTimeoutMs int `mapstructure:"reply_timeout_ms"`
	} `mapstructure:"client"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Log every received and sent datagram at debug level.
		PacketLoggingEnabled bool `mapstructure:"packet_logging_enabled"`
		// Enable database-level query logging.
		DatabaseLoggingEnabled bool `mapstructure:"database_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "ITEMWARS"

// LoadConfig initializes Viper with the contents of the config file under configPath.
func LoadConfig(configPath string) *Config {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, viper.ConfigFileNotFoundError{}) {
			fmt.Printf("error reading config file: no config file in path %s", configPath)
		} else {
			fmt.Printf("error reading config file: %v", err)
		}
		os.Exit(1)
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Printf("error binding %s to %s", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Printf("error unmarshaling config object: %v", err)
		os.Exit(1)
	}
	return config
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a Postgres connection string generated from the
// provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// GameServerAddress returns the full bind address for the game server socket.
func (c *Config) GameServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.GameServer.Port)
}
