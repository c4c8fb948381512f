// Package repository holds the errors every storage backend reports. The
// repository interfaces live with the domain packages that consume them.
package repository
