// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateDocente stores a regular docente of type tipo.
func CreateDocente(t *testing.T, repo docente.Repository, nombres, apellido, dni, tipo string, suspension ...bool) docente.Docente {
	t.Helper()
	now := time.Now().UTC()
	d := docente.Docente{
		Nombres:         nombres,
		ApellidoPaterno: apellido,
		DNI:             dni,
		TipoDocente:     tipo,
		Categoria:       docente.CategoriaRegular,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(suspension) > 0 {
		d.SuspensionRetencion = suspension[0]
	}
	d, err := repo.CreateDocente(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateDocente() failed: %v", err)
	}
	return d
}

func CreatePrograma(t *testing.T, repo programa.Repository, nombre, codigo string) programa.Programa {
	t.Helper()
	now := time.Now().UTC()
	p, err := repo.CreatePrograma(context.Background(), programa.Programa{
		Nombre:    nombre,
		Codigo:    codigo,
		Grado:     programa.GradoMaestria,
		Activo:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePrograma() failed: %v", err)
	}
	return p
}

func CreateSemestre(t *testing.T, repo programa.Repository, programaID int64, numero int) programa.Semestre {
	t.Helper()
	now := time.Now().UTC()
	s, err := repo.CreateSemestre(context.Background(), programa.Semestre{
		ProgramaID: programaID,
		Numero:     numero,
		Nombre:     "Semestre",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateSemestre() failed: %v", err)
	}
	return s
}

func CreateCurso(t *testing.T, repo curso.Repository, semestreID int64, codigo, nombre string, horas int) curso.Curso {
	t.Helper()
	now := time.Now().UTC()
	c, err := repo.CreateCurso(context.Background(), curso.Curso{
		Codigo:     codigo,
		Nombre:     nombre,
		Creditos:   3,
		Horas:      horas,
		SemestreID: semestreID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateCurso() failed: %v", err)
	}
	return c
}
