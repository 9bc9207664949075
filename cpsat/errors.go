package cpsat

import "errors"

var errModelHasNoVariables = errors.New("cpsat: model has no variables")
