package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/tests"
)

func TestConsoleService_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()
	logger := new(testutil.Logger)
	svc := NewConsoleServiceMock(conf, logger)
	out := new(bytes.Buffer)
	svc.out = out

	to := []mail.Address{{Name: "Ada", Address: "ada@test.cd"}}
	svc.SendMessages(
		&core.EmailMessage{To: to, Cc: []mail.Address{{Address: "alan@test.cd"}}, Subject: "Level up", BodyStr: "You reached level 3"},
		&core.EmailMessage{Subject: "No recipient", BodyStr: "lost"},
		&core.EmailMessage{To: to, Subject: "Unknown template", TemplateName: "nope"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Level up", sent[0].Subject)
	assert.Equal(t, "You reached level 3", sent[0].TextContent)
	assert.Equal(t, 1, logger.Count("error"), "unknown template")

	printed := out.String()
	assert.Contains(t, printed, "Subject: ["+conf.AppName+"] Level up\r\n")
	assert.Contains(t, printed, "To: \"Ada\" <ada@test.cd>\r\n")
	assert.Contains(t, printed, "CC: <alan@test.cd>\r\n")
	assert.Contains(t, printed, "You reached level 3")
	assert.False(t, strings.Contains(printed, "text/html"), "no html part without html content")
}
