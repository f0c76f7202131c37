package classifier

import "strings"

// DefaultPromptTemplate is used when no prompt template is configured.
// {{FOLDERS}} is replaced with the newline-separated list of existing folders.
const DefaultPromptTemplate = `You sort images into folders. Look at the attached image and reply with exactly one line and nothing else.

Reply "image:folder" to place the image into one of the available folders.
If no available folder fits, reply "create_folder:NAME" to request a new folder.

The available folders are:
{{FOLDERS}}

Classify the attached image now.`

// seedFolders is offered when the output root is still empty, so the model
// has something to anchor its first suggestions on.
var seedFolders = []string{"cats", "dogs"}

// BuildPrompt renders the prompt template for one request.
func BuildPrompt(template string, folders []string) string {
	if template == "" {
		template = DefaultPromptTemplate
	}
	if len(folders) == 0 {
		folders = seedFolders
	}
	return strings.ReplaceAll(template, "{{FOLDERS}}", strings.Join(folders, "\n"))
}
