// Package template wraps template engines as render adapters. Engines satisfy
// TemplateRenderer; NewAdapter exposes one under an adapter name.
package template
