// Package project locates the project root and maps user-supplied paths to
// root-relative keys. Containment within the root is enforced here and is the
// only guard against writing outside the project tree.
package project
