package clubio

import (
	"github.com/ilyakaznacheev/cleanenv"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultBaseURL is the deployed backend origin used when no override is
// configured.
const DefaultBaseURL = "https://clubio.onrender.com"

// ClientConfig is the concrete Config implementation, loadable from the
// environment.
type ClientConfig struct {
	BaseURL         string `env:"CLUBIO_API_URL" env-default:"https://clubio.onrender.com"`
	RequestTimeout  int    `env:"CLUBIO_REQUEST_TIMEOUT" env-default:"30"`
	CredentialsPath string `env:"CLUBIO_CREDENTIALS_PATH"`
	Debug           bool   `env:"CLUBIO_DEBUG" env-default:"false"`
}

var _ Config = &ClientConfig{}

func (c *ClientConfig) GetBaseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

// GetRequestTimeout is the transport timeout in seconds
func (c *ClientConfig) GetRequestTimeout() int {
	return c.RequestTimeout
}

func (c *ClientConfig) GetCredentialsPath() string {
	return c.CredentialsPath
}

func (c *ClientConfig) GetDebug() bool {
	return c.Debug
}

// LoadConfig reads ClientConfig from the process environment.
func LoadConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read client configuration")
	}
	return cfg, nil
}
