// Package bitwarden is a client for the Bitwarden CLI (`bw`). Private
// keys are stored as secure notes named <project>/<environment>, with the
// secret in the note body and metadata in typed fields. envctl only
// constructs and parses the JSON representations the CLI exchanges; vault
// storage and cryptography stay with Bitwarden.
package bitwarden

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/envctl/envctl/internal/errors"
	"github.com/envctl/envctl/internal/execx"
)

// DefaultFolder is the vault folder envctl keeps its items in.
const DefaultFolder = "dotenvx-keys"

// Secure-note constants from the bw CLI item schema.
const (
	itemTypeSecureNote = 2
	noteTypeGeneric    = 0
	fieldTypeText      = 0
)

// Field names envctl writes on every item.
const (
	FieldPrivateKey  = "DOTENV_PRIVATE_KEY"
	FieldEnvironment = "environment"
	FieldProject     = "project"
	FieldCreated     = "created"
	FieldUpdated     = "updated"
	FieldNote        = "note"
	FieldVersion     = "version"
)

// Status is the decoded `bw status` output.
type Status struct {
	ServerURL string `json:"serverUrl"`
	UserEmail string `json:"userEmail"`
	Status    string `json:"status"`
}

// Unlocked reports whether the vault is ready for use.
func (s Status) Unlocked() bool {
	return s.Status == "unlocked"
}

// Folder is one vault folder.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemField is one typed field on a vault item.
type ItemField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  int    `json:"type"`
}

// SecureNote is the secure-note marker object on an item.
type SecureNote struct {
	Type int `json:"type"`
}

// Item is one vault item as the bw CLI represents it.
type Item struct {
	ID           string      `json:"id,omitempty"`
	Type         int         `json:"type"`
	Name         string      `json:"name"`
	Notes        string      `json:"notes"`
	FolderID     string      `json:"folderId,omitempty"`
	Fields       []ItemField `json:"fields,omitempty"`
	SecureNote   *SecureNote `json:"secureNote,omitempty"`
	RevisionDate string      `json:"revisionDate,omitempty"`
}

// FieldValue returns the value of the named field.
func (i Item) FieldValue(name string) (string, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// PrivateKey returns the stored secret: the note body, with the
// DOTENV_PRIVATE_KEY field as a fallback for manually created items.
func (i Item) PrivateKey() string {
	if strings.TrimSpace(i.Notes) != "" {
		return strings.TrimSpace(i.Notes)
	}
	if v, ok := i.FieldValue(FieldPrivateKey); ok {
		return v
	}
	return ""
}

// ItemName builds the canonical item name for a project environment.
func ItemName(project, env string) string {
	return project + "/" + env
}

// VersionedItemName builds the name an item is archived under when
// --keep-versions is set.
func VersionedItemName(project, env, version string) string {
	return project + "/" + env + "/" + version
}

// NewKeyItem builds a secure-note item for one private key.
func NewKeyItem(project, env, keyName, keyValue, folderID, note string) Item {
	now := time.Now().Format(time.RFC3339)
	fields := []ItemField{
		{Name: FieldPrivateKey, Value: keyName, Type: fieldTypeText},
		{Name: FieldEnvironment, Value: env, Type: fieldTypeText},
		{Name: FieldProject, Value: project, Type: fieldTypeText},
		{Name: FieldCreated, Value: now, Type: fieldTypeText},
		{Name: FieldUpdated, Value: now, Type: fieldTypeText},
	}
	if note != "" {
		fields = append(fields, ItemField{Name: FieldNote, Value: note, Type: fieldTypeText})
	}
	return Item{
		Type:       itemTypeSecureNote,
		Name:       ItemName(project, env),
		Notes:      keyValue,
		FolderID:   folderID,
		Fields:     fields,
		SecureNote: &SecureNote{Type: noteTypeGeneric},
	}
}

// ArchivedItem returns a copy of item renamed to the versioned archive
// name, with the version recorded as a field. Other fields and the note
// body carry over unchanged.
func ArchivedItem(item Item, project, env, version string) Item {
	archived := item
	archived.Name = VersionedItemName(project, env, version)
	fields := make([]ItemField, 0, len(item.Fields)+1)
	for _, f := range item.Fields {
		if f.Name != FieldVersion {
			fields = append(fields, f)
		}
	}
	archived.Fields = append(fields, ItemField{Name: FieldVersion, Value: version, Type: fieldTypeText})
	return archived
}

// EncodePayload marshals v to the base64-wrapped JSON the bw create/edit
// commands expect on argv.
func EncodePayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeStatus parses `bw status` JSON output.
func DecodeStatus(output string) (Status, error) {
	var s Status
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &s); err != nil {
		return Status{}, fmt.Errorf("failed to parse bw status output: %w", err)
	}
	return s, nil
}

// Installed reports whether the bw CLI is on PATH.
func Installed() bool {
	return execx.Which("bw")
}

// GetStatus queries the vault session state.
func GetStatus() (Status, error) {
	res, err := execx.Run("", "bw", "status")
	if err != nil {
		return Status{}, err
	}
	return DecodeStatus(res.Stdout)
}

// CheckUnlocked returns a sentinel error when the vault is not usable:
// ErrVaultUnauthenticated when logged out, ErrVaultLocked when locked.
func CheckUnlocked() error {
	status, err := GetStatus()
	if err != nil {
		return err
	}
	switch status.Status {
	case "unlocked":
		return nil
	case "unauthenticated":
		return kerrors.ErrVaultUnauthenticated
	default:
		return kerrors.ErrVaultLocked
	}
}

// Sync pulls the latest vault state before reads and writes.
func Sync() error {
	_, err := execx.Run("", "bw", "sync")
	return err
}

// ListFolders returns all vault folders.
func ListFolders() ([]Folder, error) {
	res, err := execx.Run("", "bw", "list", "folders")
	if err != nil {
		return nil, err
	}
	var folders []Folder
	if err := json.Unmarshal([]byte(res.Stdout), &folders); err != nil {
		return nil, fmt.Errorf("failed to parse bw folders output: %w", err)
	}
	return folders, nil
}

// FindOrCreateFolder locates the named folder, creating it when absent.
func FindOrCreateFolder(name string) (Folder, error) {
	folders, err := ListFolders()
	if err != nil {
		return Folder{}, err
	}
	for _, f := range folders {
		if f.Name == name {
			return f, nil
		}
	}

	payload, err := EncodePayload(Folder{Name: name})
	if err != nil {
		return Folder{}, err
	}
	res, err := execx.Run("", "bw", "create", "folder", payload)
	if err != nil {
		return Folder{}, err
	}
	var created Folder
	if err := json.Unmarshal([]byte(res.Stdout), &created); err != nil {
		return Folder{}, fmt.Errorf("failed to parse bw create folder output: %w", err)
	}
	return created, nil
}

// ListItems searches vault items by name, optionally within a folder.
// An empty search lists everything in the folder.
func ListItems(search, folderID string) ([]Item, error) {
	args := []string{"list", "items"}
	if search != "" {
		args = append(args, "--search", search)
	}
	if folderID != "" {
		args = append(args, "--folderid", folderID)
	}
	res, err := execx.Run("", "bw", args...)
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal([]byte(res.Stdout), &items); err != nil {
		return nil, fmt.Errorf("failed to parse bw items output: %w", err)
	}
	return items, nil
}

// CreateItem creates a vault item.
func CreateItem(item Item) error {
	payload, err := EncodePayload(item)
	if err != nil {
		return err
	}
	_, err = execx.Run("", "bw", "create", "item", payload)
	return err
}

// EditItem updates an existing vault item by ID.
func EditItem(item Item) error {
	if item.ID == "" {
		return fmt.Errorf("cannot edit an item without an id")
	}
	payload, err := EncodePayload(item)
	if err != nil {
		return err
	}
	_, err = execx.Run("", "bw", "edit", "item", item.ID, payload)
	return err
}
