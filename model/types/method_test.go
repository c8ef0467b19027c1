package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/qgate/model/action"
)

type sampleInput struct{ Name string }
type sampleOutput struct{ Value int }

func TestSignatures_Lookup(t *testing.T) {
	signatures := Signatures{
		{Kind: action.GetListItems, Required: []string{"list_name"}, Input: reflect.TypeOf(&sampleInput{}), Output: reflect.TypeOf(&sampleOutput{})},
		{Kind: action.SendCoin},
	}
	sig := signatures.Lookup(action.GetListItems)
	if assert.NotNil(t, sig) {
		assert.Equal(t, []string{"list_name"}, sig.Required)
		assert.IsType(t, &sampleInput{}, sig.NewInput())
		assert.IsType(t, &sampleOutput{}, sig.NewOutput())
	}
	assert.Nil(t, signatures.Lookup(action.SaveFile))
	assert.Nil(t, signatures.Lookup(action.SendCoin).NewInput())
}
