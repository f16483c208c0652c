package appfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFS_baseTemplates(t *testing.T) {
	for _, name := range []string{
		"templates/docx/_base.xml",
		"templates/email/_base.gohtml",
		"templates/email/_base.txt",
	} {
		_, err := FS.ReadFile(name)
		assert.NoError(t, err, name)
	}
}
