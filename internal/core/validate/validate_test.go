package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "ann", false},
		{"valid with dots", "ann.lee", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"inner space", "ann lee", true},
		{"slash", "ann/lee", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UserName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "UserName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:8080/api/v1", false},
		{"https", "https://gallery.example.com", false},
		{"empty", "", true},
		{"no scheme", "localhost:8080", true},
		{"ftp", "ftp://example.com", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPURL(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "HTTPURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestTag(t *testing.T) {
	assert.NoError(t, Tag("sea"))
	assert.Error(t, Tag(" "))
	assert.Error(t, Tag("a,b"))
}

func TestUserNameField(t *testing.T) {
	assert.NoError(t, UserNameField("user", "ann"))
	assert.Error(t, UserNameField("user", ""))
}
