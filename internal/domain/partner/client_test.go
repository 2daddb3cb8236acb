package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		clientName string
		wantErr    bool
	}{
		{
			name:       "valid client",
			clientName: "Droguerie Atlas",
			wantErr:    false,
		},
		{
			name:       "empty name",
			clientName: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.clientName, "0661234567", "12 Rue des Orangers", "Casablanca")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.clientName, client.Name)
			assert.Equal(t, "Casablanca", client.City)
			assert.NotEqual(t, uuid.Nil, client.ID)
			assert.Len(t, client.GetDomainEvents(), 1)
		})
	}
}

func TestClientUpdate(t *testing.T) {
	client, err := NewClient("Droguerie Atlas", "0661234567", "12 Rue des Orangers", "Casablanca")
	require.NoError(t, err)
	before := client.Version

	err = client.Update("Droguerie Atlas SARL", "0522334455", "45 Bd Zerktouni", "Casablanca")
	require.NoError(t, err)
	assert.Equal(t, "Droguerie Atlas SARL", client.Name)
	assert.Equal(t, "0522334455", client.Phone)
	assert.Equal(t, before+1, client.Version)

	err = client.Update("", "", "", "")
	assert.Error(t, err)
}
