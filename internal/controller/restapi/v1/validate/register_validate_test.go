package validate_test

import (
	"strings"
	"testing"

	"github.com/andreyxaxa/Registration-Saga/internal/controller/restapi/v1/validate"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		fullName string
		wantErr  bool
	}{
		{name: "valid", username: "alice", email: "alice@example.com", fullName: "Alice A"},
		{name: "short username", username: "al", email: "alice@example.com", wantErr: true},
		{name: "long username", username: strings.Repeat("a", 65), email: "alice@example.com", wantErr: true},
		{name: "email without at", username: "alice", email: "alice.example.com", wantErr: true},
		{name: "long full name", username: "alice", email: "alice@example.com", fullName: strings.Repeat("x", 129), wantErr: true},
		{name: "empty full name is fine", username: "alice", email: "alice@example.com", fullName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Register(tt.username, tt.email, tt.fullName)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
