package xform

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

const (
	// InstanceAttr is the root attribute holding the numeric platform id.
	InstanceAttr = "iasoInstance"
	// EditUserTag is the meta element holding the id of the editing user.
	EditUserTag = "editUserID"
)

// ErrNoRoot is returned for documents without a root element.
var ErrNoRoot = errors.New("document has no root element")

// InjectIdentifiers sets the numeric instance id as a root attribute and
// the editing user id inside the meta element. Empty values are not
// written. The output always has both namespace declarations and an XML
// prolog.
func InjectIdentifiers(doc []byte, numericID, editUserID string) ([]byte, error) {
	d := etree.NewDocument()
	if err := d.ReadFromBytes(doc); err != nil {
		return nil, fmt.Errorf("cannot parse instance: %w", err)
	}
	root := d.Root()
	if root == nil {
		return nil, ErrNoRoot
	}

	if numericID != "" {
		root.CreateAttr(InstanceAttr, numericID)
	}
	if editUserID != "" {
		meta := root.SelectElement("meta")
		if meta == nil {
			meta = root.CreateElement("meta")
		}
		user := meta.SelectElement(EditUserTag)
		if user == nil {
			user = meta.CreateElement(EditUserTag)
		}
		user.SetText(editUserID)
	}

	if root.SelectAttr("xmlns:jr") == nil {
		root.CreateAttr("xmlns:jr", NamespaceJR)
	}
	if root.SelectAttr("xmlns:orx") == nil {
		root.CreateAttr("xmlns:orx", NamespaceORX)
	}
	ensureProlog(d)

	res, err := d.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("cannot serialize instance: %w", err)
	}
	return res, nil
}

// NumericID returns the numeric platform id stored on the root element,
// or an empty string.
func NumericID(doc []byte) (string, error) {
	d := etree.NewDocument()
	if err := d.ReadFromBytes(doc); err != nil {
		return "", fmt.Errorf("cannot parse instance: %w", err)
	}
	root := d.Root()
	if root == nil {
		return "", ErrNoRoot
	}
	return root.SelectAttrValue(InstanceAttr, ""), nil
}

func ensureProlog(d *etree.Document) {
	for _, t := range d.Child {
		if p, ok := t.(*etree.ProcInst); ok && p.Target == "xml" {
			return
		}
	}
	d.InsertChildAt(0, &etree.ProcInst{
		Target: "xml",
		Inst:   `version="1.0" encoding="UTF-8"`,
	})
}
