package server

import (
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
)

const mimeCBOR = "application/cbor"

// encMode writes deterministic CBOR so equal reports encode to equal bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("server: CBOR encoder initialization failed: " + err.Error())
	}
}

// render writes body as CBOR when the client asks for it and JSON otherwise.
func render(c *gin.Context, status int, body any) {
	if !strings.Contains(c.GetHeader("Accept"), mimeCBOR) {
		c.JSON(status, body)
		return
	}
	data, err := encMode.Marshal(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(status, mimeCBOR, data)
}
