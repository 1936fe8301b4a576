package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	cases := []struct {
		name      string
		mode      string
		token     string
		expected  string
		want      string
		wantError error
	}{
		{"match", "subscribe", "secret", "secret", "1158201444", nil},
		{"token mismatch", "subscribe", "nope", "secret", "", ErrVerificationFailed},
		{"wrong mode", "unsubscribe", "secret", "secret", "", ErrVerificationFailed},
		{"no configured secret", "subscribe", "secret", "", "", ErrVerificationFailed},
		{"missing mode", "", "secret", "secret", "", ErrMissingParams},
		{"missing token", "subscribe", "", "secret", "", ErrMissingParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Verify(tc.mode, tc.token, "1158201444", tc.expected)
			if tc.wantError != nil {
				assert.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseEvent(t *testing.T) {
	raw := `{
		"object": "instagram",
		"entry": [
			{"id": "p1", "messaging": [{"sender": {"id": "U1"}, "recipient": {"id": "PAGE"}, "message": {"mid": "m1", "text": "Hola"}}]},
			{"id": "p1", "messaging": [{"sender": {"id": "U2"}, "message": {"mid": "m2"}}]},
			{"id": "p1", "messaging": [{"sender": {"id": "U3"}, "read": {"mid": "m0"}}]},
			{"id": "p1", "messaging": []},
			{"id": "p1", "messaging": [{"sender": {"id": "PAGE"}, "message": {"mid": "m3", "text": "echo", "is_echo": true}}]},
			{"id": "p1", "messaging": [
				{"sender": {"id": "U4"}, "message": {"mid": "m4", "text": "primero"}},
				{"sender": {"id": "U4"}, "message": {"mid": "m5", "text": "segundo"}}
			]}
		]
	}`
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	msgs, err := ParseEvent(p, "instagram")
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{SenderID: "U1", Text: "Hola", MID: "m1"},
		{SenderID: "U4", Text: "primero", MID: "m4"},
	}, msgs)
}

func TestParseEventRejectsOtherObjects(t *testing.T) {
	_, err := ParseEvent(Payload{Object: "page"}, "instagram")
	assert.ErrorIs(t, err, ErrUnsupportedObject)
}

func TestParseEventWithoutText(t *testing.T) {
	p := Payload{Object: "instagram", Entry: []Entry{{Messaging: []Messaging{{Sender: Party{ID: "U1"}}}}}}
	msgs, err := ParseEvent(p, "instagram")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"instagram","entry":[]}`)
	header := Sign(body, "app-secret")

	assert.NoError(t, VerifySignature(body, header, "app-secret"))
	assert.ErrorIs(t, VerifySignature(body, header, "other-secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature([]byte(`{}`), header, "app-secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "", "app-secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "sha256=zz", "app-secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "sha1=abcd", "app-secret"), ErrInvalidSignature)
}
