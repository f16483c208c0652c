package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(core.NewTestConfig())

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: "Ana", Address: "ana@unprg.edu.pe"}},
		Subject: "Prueba",
		BodyStr: "hola",
	}
	require.NoError(t, msg.Attach(strings.NewReader("%PDF-1.4"), "exp.pdf", "application/pdf"))
	svc.SendMessages(msg, &core.EmailMessage{Subject: "sin destinatario", BodyStr: "x"})

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Prueba", sent[0].Subject)
	assert.Equal(t, "hola", sent[0].TextContent)

	body, err := svc.build(sent[0])
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [SISCON] Prueba")
	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, "filename=exp.pdf")
}
