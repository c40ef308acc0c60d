package tunable

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
	"gopkg.in/yaml.v3"
)

// persistedRecord is the on-disk shape of one tunable value, tagged with
// the firmware-version epoch it was written under so a later boot can
// detect a descriptor change and discard it rather than silently coerce.
type persistedRecord struct {
	Kind  Kind     `yaml:"kind"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
	Value any      `yaml:"value"`
	Epoch int      `yaml:"epoch"`
}

func (pr persistedRecord) typedValue(k Kind) any {
	switch k {
	case KindBool:
		if b, ok := pr.Value.(bool); ok {
			return b
		}
	case KindU8:
		if n, ok := toInt(pr.Value); ok {
			return uint8(n) //nolint:gosec
		}
	case KindI32:
		if n, ok := toInt(pr.Value); ok {
			return int32(n)
		}
	case KindF32:
		if f, ok := toFloat(pr.Value); ok {
			return float32(f)
		}
	}

	return nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// fileDocument is the whole-file shape written by FileBacking.Save.
type fileDocument struct {
	Epoch   int                        `yaml:"epoch"`
	Records map[string]persistedRecord `yaml:"records"`
}

// FileBacking persists the store to a single YAML file on disk, writing a
// temp file and renaming over the original so a crash mid-write never
// leaves a half-written document in place.
type FileBacking struct {
	Path string

	// FlushLogPath, if set, receives one line per flush with a
	// strftime-patterned timestamp prefix (FlushLogPattern), mirroring
	// a daily-rotating-filename approach generalised to an
	// operator-configurable pattern.
	FlushLogPath    string
	FlushLogPattern string
}

func (f *FileBacking) Load() (map[string]persistedRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc.Records, nil
}

func (f *FileBacking) Save(epoch int, records map[string]persistedRecord) error {
	doc := fileDocument{Epoch: epoch, Records: records}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".tunables-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return err
	}

	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)

		return err
	}

	f.appendFlushLog(len(records))

	return nil
}

func (f *FileBacking) appendFlushLog(batchSize int) {
	if f.FlushLogPath == "" {
		return
	}

	pattern := f.FlushLogPattern
	if pattern == "" {
		pattern = "%Y-%m-%dT%H:%M:%S"
	}

	fm, err := strftime.New(pattern)
	if err != nil {
		return
	}

	line := fmt.Sprintf("%s flushed %d record(s)\n", fm.FormatString(time.Now()), batchSize)

	fh, err := os.OpenFile(f.FlushLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer fh.Close() //nolint:errcheck

	fh.WriteString(line) //nolint:errcheck
}
