package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled during declaration loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error code constants for declaration loading.
const (
	ErrCodeGeneric    = "D001" // Generic/unknown error
	ErrCodeScanError  = "D002" // Directory scan error
	ErrCodeNoFiles    = "D003" // No CUE files found
	ErrCodeLoadFailed = "D004" // CUE load failed
	ErrCodeNotFound   = "D005" // Path not found
	ErrCodeBadDecl    = "D006" // Declaration fails validation
)

// LoadError is an error encountered while loading domain configuration.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDeclarations loads extension declarations from the CUE files in a
// domain configuration directory. The configuration declares extensions
// as a list:
//
//	extensions: [
//		{id: "statutes", module: "m-ld-iroha", class: "AgreementProof"},
//	]
//
// If mode is LoadModeFailFast, the first error aborts; LoadModeCollectAll
// gathers every error so a whole configuration can be reported at once.
func LoadDeclarations(dir string, mode LoadMode) ([]Declaration, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("configuration directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing configuration directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	var (
		decls []Declaration
		errs  []error
	)
	extVal := value.LookupPath(cue.ParsePath("extensions"))
	if !extVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "no extensions list found in configuration"}}
	}

	iter, iterErr := extVal.List()
	if iterErr != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("extensions is not a list: %v", iterErr)}}
	}
	for i := 0; iter.Next(); i++ {
		decl, declErr := decodeDeclaration(iter.Value())
		if declErr != nil {
			errs = append(errs, declErr)
			if mode == LoadModeFailFast {
				return decls, errs
			}
			continue
		}
		decls = append(decls, decl)
	}

	if len(decls) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "extensions list is empty"})
	}
	return decls, errs
}

// decodeDeclaration validates one extension entry.
func decodeDeclaration(v cue.Value) (Declaration, *LoadError) {
	var decl Declaration
	if err := v.Decode(&decl); err != nil {
		return Declaration{}, &LoadError{
			Code:    ErrCodeBadDecl,
			Message: fmt.Sprintf("decoding declaration: %v", err),
			Pos:     v.Pos(),
		}
	}
	required := []struct{ field, val string }{
		{"id", decl.ID},
		{"module", decl.Module},
		{"class", decl.Class},
	}
	for _, r := range required {
		if r.val == "" {
			return Declaration{}, &LoadError{
				Code:    ErrCodeBadDecl,
				Message: fmt.Sprintf("declaration %s is required", r.field),
				Pos:     v.Pos(),
			}
		}
	}
	return decl, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
