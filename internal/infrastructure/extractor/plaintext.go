package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aihorizon/horizon/internal/core/domain"
)

func extractPlaintext(filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract file",
			fmt.Errorf("unsupported binary format: %s", filename))
	}
	return strings.TrimSpace(string(data)), nil
}
