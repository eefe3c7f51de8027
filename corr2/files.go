package corr2

import "fmt"

// Role is the part a dataset plays in a correlation.
type Role uint8

const (
	// Primary is the main catalog.
	Primary Role = iota
	// Secondary is the second catalog of a cross-correlation.
	Secondary
	// Random is the random catalog matching Primary.
	Random
	// Random2 is the random catalog matching Secondary.
	Random2
)

// Roles returns all roles in argument order.
func Roles() []Role {
	return []Role{Primary, Secondary, Random, Random2}
}

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Random:
		return "random"
	case Random2:
		return "random2"
	default:
		return fmt.Sprintf("role(%d)", r)
	}
}

// Kind says whether a file argument names a catalog or a list of catalogs.
type Kind uint8

const (
	// Name is a single catalog path.
	Name Kind = iota
	// List is a file holding one catalog path per line.
	List
)

func (k Kind) String() string {
	if k == List {
		return "list"
	}
	return "name"
}

// FileKey returns the corr2 keyword for a file argument, e.g. "file_name2"
// or "rand_file_list".
func FileKey(role Role, kind Kind) string {
	key := "file_" + kind.String()
	if role == Random || role == Random2 {
		key = "rand_" + key
	}
	if role == Secondary || role == Random2 {
		key += "2"
	}
	return key
}
