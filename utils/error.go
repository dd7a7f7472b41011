package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorSequenceExhausted is returned when a unique transaction number
// could not be allocated within the bounded retry budget.
var ErrorSequenceExhausted = errors.New("could not allocate a unique number")
