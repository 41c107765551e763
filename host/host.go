package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Version selects the revision of the host-bridge contract requested when
// deriving a thread context.
type Version int32

const (
	Version1_1 Version = 0x00010001
	Version1_2 Version = 0x00010002
	Version1_4 Version = 0x00010004
	Version1_6 Version = 0x00010006
	Version1_8 Version = 0x00010008
	Version9   Version = 0x00090000
	Version10  Version = 0x000a0000
	Version19  Version = 0x00130000
	Version20  Version = 0x00140000
	Version21  Version = 0x00150000
)

// DefaultVersion is the baseline requested until SetVersion says otherwise.
const DefaultVersion = Version1_6

// KnownVersions lists the published contract revisions in ascending order.
var KnownVersions = []Version{
	Version1_1, Version1_2, Version1_4, Version1_6, Version1_8,
	Version9, Version10, Version19, Version20, Version21,
}

// Major returns the high half of the version word.
func (v Version) Major() int { return int(v >> 16) }

// Minor returns the low half of the version word.
func (v Version) Minor() int { return int(v & 0xffff) }

func (v Version) String() string {
	if v.Minor() == 0 {
		return strconv.Itoa(v.Major())
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// ParseVersion accepts "1.6", "21" or a raw integer such as "0x10006" or "7".
// Bare integers below 9 that do not name a published revision are taken as
// raw version words.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty version")
	}
	if major, minor, ok := strings.Cut(s, "."); ok {
		ma, err := strconv.ParseUint(major, 10, 15)
		if err != nil {
			return 0, fmt.Errorf("version %q: %w", s, err)
		}
		mi, err := strconv.ParseUint(minor, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("version %q: %w", s, err)
		}
		return Version(ma<<16 | mi), nil
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("version %q: %w", s, err)
	}
	if n >= 9 && n <= 0x7fff && !strings.HasPrefix(strings.ToLower(s), "0x") {
		return Version(n << 16), nil
	}
	return Version(n), nil
}

// Status is the integer result code of host calls.
type Status int32

const (
	OK       Status = 0
	Err      Status = -1
	Detached Status = -2
	EVersion Status = -3
	ENoMem   Status = -4
	EExist   Status = -5
	EInval   Status = -6
)

// OnLoadFailed is the attach hook result that tells the host to abort loading.
const OnLoadFailed = int32(Err)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Err:
		return "ERR"
	case Detached:
		return "EDETACHED"
	case EVersion:
		return "EVERSION"
	case ENoMem:
		return "ENOMEM"
	case EExist:
		return "EEXIST"
	case EInval:
		return "EINVAL"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Raw is an opaque host pointer. Zero is null.
type Raw uintptr

// VM is the process-wide connection to the host runtime.
type VM interface {
	// GetEnv derives the execution context of the calling OS thread.
	// A nil Env is returned together with a non-OK status when the host
	// declines (thread not attached, unsupported version).
	GetEnv(version Version) (Env, Status)
}

// Env is the execution context of a single thread.
type Env interface {
	// FindClass resolves a class by internal name ("java/lang/Object") and
	// returns a local reference.
	FindClass(name string) (Raw, error)

	// NewGlobalRef promotes a reference so it outlives the current call.
	NewGlobalRef(ref Raw) Raw

	// DeleteLocalRef releases a local reference.
	DeleteLocalRef(ref Raw)

	// DeleteGlobalRef releases a global reference.
	DeleteGlobalRef(ref Raw)

	// GetMethodID resolves an instance method or constructor ("<init>").
	GetMethodID(class Raw, name, sig string) (Raw, error)

	// GetStaticMethodID resolves a static method.
	GetStaticMethodID(class Raw, name, sig string) (Raw, error)
}
