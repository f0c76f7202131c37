package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Action is what the model asked us to do with an image.
type Action int

const (
	// ActionPlace moves the image into an existing folder.
	ActionPlace Action = iota
	// ActionCreateFolder creates a new category folder first.
	ActionCreateFolder
)

// createFolderPrefix is the literal command the model emits when it wants a
// folder that does not exist yet.
const createFolderPrefix = "create_folder:"

var (
	ErrEmptyReply     = errors.New("empty reply from model")
	ErrNoChoices      = errors.New("no choices returned from model")
	ErrEmptyFolder    = errors.New("reply contains an empty folder name")
	ErrMalformedReply = errors.New("malformed reply")
)

// Request holds one image plus the context the model needs to place it.
type Request struct {
	// ImageName is the file's base name, shown to the model and used to
	// recognize "name:folder" replies.
	ImageName string
	// ImageData is the raw file contents.
	ImageData []byte
	// MIMEType is the image content type, e.g. "image/png".
	MIMEType string
	// Folders is the set of category folders that already exist.
	Folders []string
}

// Decision is the parsed form of the model's one-line reply.
type Decision struct {
	Action Action
	// Folder is the target folder for ActionPlace, or the folder to create
	// for ActionCreateFolder.
	Folder string
	// Raw is the reply line as received, kept for logging.
	Raw string
}

// ImageClassifier asks a remote vision model where an image belongs.
type ImageClassifier interface {
	Classify(ctx context.Context, req Request) (Decision, error)
}

// ParseReply turns the model's one-line reply into a Decision.
//
// Accepted forms:
//
//	create_folder:NAME   -> create the folder NAME
//	image.jpg:folder     -> place into folder
//	other:folder         -> place into folder (left side need not match the filename)
//	folder               -> place into folder
func ParseReply(imageName, reply string) (Decision, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Decision{}, ErrEmptyReply
	}
	// Models occasionally wrap the answer in extra lines; take the first
	// non-empty one.
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return parseLine(imageName, line, reply)
	}
	return Decision{}, ErrEmptyReply
}

func parseLine(imageName, line, raw string) (Decision, error) {
	if strings.HasPrefix(line, createFolderPrefix) {
		folder := strings.TrimSpace(strings.TrimPrefix(line, createFolderPrefix))
		if folder == "" {
			return Decision{}, fmt.Errorf("%w: %q", ErrEmptyFolder, raw)
		}
		return Decision{Action: ActionCreateFolder, Folder: folder, Raw: raw}, nil
	}

	if name, folder, ok := strings.Cut(line, ":"); ok {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			return Decision{}, fmt.Errorf("%w: %q", ErrEmptyFolder, raw)
		}
		if strings.TrimSpace(name) != imageName {
			// Some models drop or mangle the filename prefix; the folder on
			// the right side is still usable.
			log.Debugf("reply prefix %q does not match image %q, using folder %q", name, imageName, folder)
		}
		return Decision{Action: ActionPlace, Folder: folder, Raw: raw}, nil
	}

	// Bare folder name.
	return Decision{Action: ActionPlace, Folder: line, Raw: raw}, nil
}
