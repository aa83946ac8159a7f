package common

import (
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func getSnowflakeNode() *snowflake.Node {
	snowflakeOnce.Do(func() {
		nodeID := cast.ToInt64(os.Getenv("TOUGHPOS_NODE_ID"))
		if nodeID < 0 || nodeID > 1023 {
			nodeID = 0
		}
		var err error
		snowflakeNode, err = snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode
}

// UUIDint64 generates a cluster-safe int64 identifier.
func UUIDint64() int64 {
	return getSnowflakeNode().Generate().Int64()
}

// UUID generates the string form of a snowflake identifier.
func UUID() string {
	return getSnowflakeNode().Generate().String()
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsEmptyOrNA treats "N/A" the same as empty, a convention kept from imported data.
func IsEmptyOrNA(val string) bool {
	v := strings.TrimSpace(val)
	return v == "" || strings.EqualFold(v, "N/A")
}

// IfEmptyStr returns defval when val is blank.
func IfEmptyStr(val string, defval string) string {
	if strings.TrimSpace(val) == "" {
		return defval
	}
	return val
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MustMkdir creates dir (and parents) if missing.
func MustMkdir(dir string) {
	if !FileExists(dir) {
		_ = os.MkdirAll(dir, 0o755)
	}
}
