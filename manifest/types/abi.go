package types

import (
	"encoding/json"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

// ParseABIFromInterface parses a generic object into an abi.ABI. Strings are parsed directly, while any other value
// is first serialized to JSON.
func ParseABIFromInterface(i any) (*abi.ABI, error) {
	definition, ok := i.(string)
	if !ok {
		b, err := json.Marshal(i)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		definition = string(b)
	}

	result, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse contract ABI")
	}
	return &result, nil
}
