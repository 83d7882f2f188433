// Package config loads seqkit program configuration with Viper.
//
// Values come from a YAML file (config.yml, <name>.yml or cmd/<name>/config.yml),
// then a .env file loaded with godotenv, then SEQKIT_ environment variables,
// each layer overriding the previous one:
//
//	base:
//	  name: seqdemo
//	logging:
//	  level: debug
//	engine:
//	  parallel: true
//	  workers: 8
//	  min_partition: 1024
//
//	SEQKIT_ENGINE_WORKERS=4 seqdemo run
//
// Load applies defaults and validates the result.
package config
