package utils

import (
	"fmt"
	"strings"
)

// AddToLogMessage appends one entry to a per-request log accumulator
func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {
	if logMessagesBuilder.Len() == logMessagesBuilder.Cap() {
		logMessagesBuilder.Grow(len(strToAdd))
	}

	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

// FlushLogMessage prints the accumulated entries, if any, and resets the builder
func FlushLogMessage(logMessagesBuilder *strings.Builder) {
	if logMessagesBuilder.Len() == 0 {
		return
	}
	fmt.Println(logMessagesBuilder.String())
	logMessagesBuilder.Reset()
}
