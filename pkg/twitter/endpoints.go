package twitter

import (
	"fmt"
	"os"

	twitterauth "github.com/dghubble/oauth1/twitter"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Endpoints locates the OAuth provider. Unset fields fall back to the Twitter
// defaults, so a config file only needs to override what differs. Pointing
// everything at a mock provider during development is the usual case.
type Endpoints struct {
	RequestTokenURL string `yaml:"request_token_url" validate:"omitempty,url"`
	AuthorizeURL    string `yaml:"authorize_url" validate:"omitempty,url"`
	AccessTokenURL  string `yaml:"access_token_url" validate:"omitempty,url"`
	RestAPIBase     string `yaml:"rest_api_base" validate:"omitempty,url"`
}

func (e Endpoints) withDefaults() Endpoints {
	if e.RequestTokenURL == "" {
		e.RequestTokenURL = twitterauth.AuthenticateEndpoint.RequestTokenURL
	}
	if e.AuthorizeURL == "" {
		e.AuthorizeURL = twitterauth.AuthenticateEndpoint.AuthorizeURL
	}
	if e.AccessTokenURL == "" {
		e.AccessTokenURL = twitterauth.AuthenticateEndpoint.AccessTokenURL
	}
	if e.RestAPIBase == "" {
		e.RestAPIBase = defaultRestAPIBase
	}
	return e
}

// LoadEndpointsFile reads a YAML endpoint override file.
func LoadEndpointsFile(path string) (Endpoints, error) {
	var endpoints Endpoints

	data, err := os.ReadFile(path)
	if err != nil {
		return endpoints, fmt.Errorf("read endpoints file: %w", err)
	}

	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return endpoints, fmt.Errorf("unmarshal endpoints file: %w", err)
	}

	if err := validator.New().Struct(endpoints); err != nil {
		return endpoints, fmt.Errorf("validate endpoints file: %w", err)
	}

	return endpoints, nil
}
