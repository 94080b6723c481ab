package secretstore

import "fmt"

// NewStore creates a Store based on the configuration
func NewStore(config StoreConfig) (Store, error) {
	switch config.Type {
	case FileStoreType, "":
		return NewFileStore(), nil

	case S3StoreType:
		s3Config, err := parseS3Config(config.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid s3 store config: %w", err)
		}
		return NewS3Store(s3Config)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

func parseS3Config(config map[string]interface{}) (S3Config, error) {
	var cfg S3Config
	var err error

	if cfg.Endpoint, err = stringOption(config, "endpoint"); err != nil {
		return cfg, err
	}
	if cfg.AccessKeyID, err = stringOption(config, "access_key_id"); err != nil {
		return cfg, err
	}
	if cfg.SecretAccessKey, err = stringOption(config, "secret_access_key"); err != nil {
		return cfg, err
	}
	if cfg.Bucket, err = stringOption(config, "bucket"); err != nil {
		return cfg, err
	}

	if v, ok := config["use_ssl"].(bool); ok {
		cfg.UseSSL = v
	}
	if v, ok := config["region"].(string); ok {
		cfg.Region = v
	}
	if v, ok := config["key_prefix"].(string); ok {
		cfg.KeyPrefix = v
	}

	return cfg, nil
}
