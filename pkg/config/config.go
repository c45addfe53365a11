package config

// Chat definition chat_service YAML structure
type Chat struct {
	Port        string         `mapstructure:"port"`
	DefaultRoom string         `mapstructure:"default_room"`
	Mongo       DatabaseConfig `mapstructure:"mongo"`
	Redis       RedisConfig    `mapstructure:"redis"`
	MinIO       MinIOConfig    `mapstructure:"minio"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Session     SessionConfig  `mapstructure:"session"`
}

// SessionConfig definition login session cache setting
type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition blob store setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition message archive feed setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}
