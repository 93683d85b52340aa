package config

import (
	"fmt"
	"os"

	"github.com/colonyops/lightbox/internal/core/validate"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including URL syntax, storage settings, and file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips config file check). This calls Validate() first for basic
// structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("api.base_url", c.API.BaseURL, validate.HTTPURL),
		c.validateDevServer(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Gallery.PageSize > 100 {
		warnings = append(warnings, ValidationWarning{
			Category: "Gallery",
			Item:     "page_size",
			Message:  fmt.Sprintf("page size %d is large; pages may load slowly", c.Gallery.PageSize),
		})
	}

	if c.DevServer.Storage == StorageS3 && c.DevServer.S3.AccessKeyID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "DevServer",
			Item:     "s3.access_key_id",
			Message:  "no static credentials; the default AWS credential chain will be used",
		})
	}

	for _, o := range c.DevServer.AllowedOrigins {
		if o == "*" {
			warnings = append(warnings, ValidationWarning{
				Category: "DevServer",
				Item:     "allowed_origins",
				Message:  "all origins are allowed",
			})
			break
		}
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateDevServer() error {
	var errs criterio.FieldErrorsBuilder

	if c.DevServer.PublicURL != "" {
		if err := validate.HTTPURL(c.DevServer.PublicURL); err != nil {
			errs = errs.Append("devserver.public_url", err)
		}
	}

	for i, o := range c.DevServer.AllowedOrigins {
		if o == "*" {
			continue
		}
		if err := validate.HTTPURL(o); err != nil {
			errs = errs.Append(fmt.Sprintf("devserver.allowed_origins[%d]", i), err)
		}
	}

	if c.DevServer.Storage == StorageS3 {
		if c.DevServer.S3.Bucket == "" {
			errs = errs.Append("devserver.s3.bucket", fmt.Errorf("bucket is required when storage is s3"))
		}
		if c.DevServer.S3.Endpoint != "" {
			if err := validate.HTTPURL(c.DevServer.S3.Endpoint); err != nil {
				errs = errs.Append("devserver.s3.endpoint", err)
			}
		}
		if (c.DevServer.S3.AccessKeyID == "") != (c.DevServer.S3.SecretAccessKey == "") {
			errs = errs.Append("devserver.s3", fmt.Errorf("access_key_id and secret_access_key must be set together"))
		}
	}

	return errs.ToError()
}
