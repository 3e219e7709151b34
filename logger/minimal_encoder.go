package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Gruvbox Dark color palette (warm, muted, easy on eyes)
type gruvboxColors struct {
	fg       string
	aqua     string
	orange   string
	yellow   string
	green    string
	blue     string
	purple   string
	red      string
	redBg    string
	yellowBg string
}

var gruvbox = gruvboxColors{
	fg:       "\x1b[38;5;223m", // Soft cream (#ebdbb2)
	aqua:     "\x1b[38;5;108m", // Muted cyan-green (#8ec07c)
	orange:   "\x1b[38;5;208m", // Warm orange (#fe8019)
	yellow:   "\x1b[38;5;214m", // Soft yellow (#fabd2f)
	green:    "\x1b[38;5;142m", // Muted green (#b8bb26)
	blue:     "\x1b[38;5;109m", // Soft blue (#83a598)
	purple:   "\x1b[38;5;175m", // Muted purple (#d3869b)
	red:      "\x1b[38;5;167m", // Warm red (#fb4934)
	redBg:    "\x1b[48;5;88m",  // Dark red background
	yellowBg: "\x1b[48;5;58m",  // Dark yellow background
}

func colorComponent(name string) string {
	// Hash for consistent color per component
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	if hash%2 == 0 {
		return gruvbox.orange
	}
	return gruvbox.yellow
}

// minimalEncoder implements a calm, compact console encoder
// Format: "13:04:35  normalize  Merged close periods  (1204 intervals, 3 passes)"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	// Time
	final.AppendString(gruvbox.aqua)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	// Component name (abbreviated) for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	// Message
	final.AppendString("  ")
	final.AppendString(gruvbox.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	// Fields: extract and color values
	if len(fields) > 0 {
		if s := extractFieldValues(fields); s != "" {
			final.AppendString("  ")
			final.AppendString(s)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + gruvbox.yellowBg + gruvbox.yellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + gruvbox.redBg + gruvbox.red + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + gruvbox.redBg + gruvbox.red + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens component names: resolve -> resolve, timeline.resolve -> t.resolve
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	if field.Type == zapcore.StringType {
		return field.String
	}

	switch field.Type {
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.Float64Type, zapcore.Float32Type:
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface)
		}
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// extractFieldValues pulls just the values from structured fields with colors
// Input: {"person_id": "p042", "intervals": 19, "passes": 3}
// Output: "p042 (19 intervals, 3 passes)" (with colored IDs and numbers)
func extractFieldValues(fields []zapcore.Field) string {
	var values []string
	var intervalCount, personCount string

	for _, field := range fields {
		switch field.Key {
		case "person_id", "run_id":
			// IDs in blue
			val := getFieldValue(field)
			if val != "" {
				values = append(values, gruvbox.blue+val+colorReset)
			}
		case "intervals":
			intervalCount = getFieldValue(field)
		case "persons":
			personCount = getFieldValue(field)
		case "passes", "iterations":
			val := getFieldValue(field)
			if val != "" {
				values = append(values, gruvbox.purple+val+colorReset+" passes")
			}
		case "duration_ms":
			val := getFieldValue(field)
			if val != "" {
				values = append(values, gruvbox.purple+val+colorReset+"ms")
			}
		}
	}

	// Special formatting for cohort stats
	if intervalCount != "" && personCount != "" {
		fg := gruvbox.fg
		num := gruvbox.purple
		values = append(values, fg+"("+num+intervalCount+colorReset+fg+" intervals, "+num+personCount+colorReset+fg+" persons)"+colorReset)
	} else if intervalCount != "" {
		values = append(values, gruvbox.purple+intervalCount+colorReset+" intervals")
	}

	if len(values) == 0 {
		return ""
	}

	return strings.Join(values, " ")
}
