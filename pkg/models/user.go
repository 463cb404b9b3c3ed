package models

import "strings"

type Cargo struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Gerarquia int    `json:"gerarquia"`
}

type Usuario struct {
	ID        string `json:"id"`
	Nombres   string `json:"nombres"`
	Apellidos string `json:"apellidos"`
	Usuario   string `json:"usuario"`
	Cargo     *Cargo `json:"cargo_id"`
}

func (u Usuario) Key() string {
	return u.ID
}

func (u Usuario) FullName() string {
	return strings.TrimSpace(u.Nombres + " " + u.Apellidos)
}

// Gerarquia returns 0 for users without a job title.
func (u Usuario) Gerarquia() int {
	if u.Cargo == nil {
		return 0
	}
	return u.Cargo.Gerarquia
}

type LoginResult struct {
	ID      string `json:"id"`
	Usuario string `json:"usuario"`
	Token   string `json:"token"`
}
