package util

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LogFormatter is a colored logrus formatter with a compact timestamp.
// It is installed by the test fixtures and by callers that want human
// readable debug output of the resolve/evaluate steps.
type LogFormatter struct{}

var symbolTable = map[logrus.Level]string{
	logrus.DebugLevel: "⚙",
	logrus.InfoLevel:  "⚐",
	logrus.WarnLevel:  "⚠",
	logrus.ErrorLevel: "⚡",
	logrus.FatalLevel: "☣",
	logrus.PanicLevel: "☠",
}

var colorTable = map[logrus.Level]int{
	logrus.DebugLevel: 36, // Cyan
	logrus.InfoLevel:  32, // Green
	logrus.WarnLevel:  33, // Yellow
	logrus.ErrorLevel: 31, // Red
	logrus.FatalLevel: 35, // Magenta
	logrus.PanicLevel: 41, // BG Red
}

func colorEscape(level logrus.Level) []byte {
	return []byte(fmt.Sprintf("\033[0;%dm", colorTable[level]))
}

var resetEscape = []byte("\033[0m")

func formatColored(buffer *bytes.Buffer, msg string, level logrus.Level) {
	buffer.Write(colorEscape(level))
	buffer.WriteString(msg)
	buffer.Write(resetEscape)
}

func formatTimestamp(buffer *bytes.Buffer, t time.Time) {
	fmt.Fprintf(buffer, "%02d.%02d.%04d", t.Day(), t.Month(), t.Year())
	buffer.WriteByte('/')
	fmt.Fprintf(buffer, "%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func formatFields(buffer *bytes.Buffer, entry *logrus.Entry) {
	idx := 0
	buffer.WriteString(" [")

	for key, value := range entry.Data {
		formatColored(buffer, key, entry.Level)
		buffer.WriteByte('=')
		buffer.WriteString(fmt.Sprintf("%v", value))

		// Print no space after the last element:
		if idx != len(entry.Data)-1 {
			buffer.WriteByte(' ')
		}

		idx++
	}

	buffer.WriteByte(']')
}

// Format implements the logrus.Formatter interface.
func (*LogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := bytes.Buffer{}

	buffer.Write(colorEscape(entry.Level))
	formatTimestamp(&buffer, entry.Time)
	buffer.WriteByte(' ')
	buffer.WriteString(symbolTable[entry.Level])
	buffer.Write(resetEscape)

	buffer.WriteByte(' ')
	buffer.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		formatFields(&buffer, entry)
	}

	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}
