package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

// ProjectTasksHandler lista as tarefas do projeto (GET) e cria uma nova (POST)
func (a *App) ProjectTasksHandler(w http.ResponseWriter, r *http.Request) {
	project, ok := a.loadOwnedProject(w, r)
	if !ok {
		return
	}
	user := auth.UserFromContext(r.Context())

	form := TaskForm{Status: string(models.StatusNotStarted)}
	errs := FieldErrors{}
	status := http.StatusOK

	if r.Method == http.MethodPost {
		var err error
		if errs, err = decodeForm(r, &form); err != nil {
			utilities.LogError(err, "ProjectTasksHandler: corpo da requisição inválido")
			a.renderError(w, r, http.StatusBadRequest)
			return
		}

		if errs.Empty() {
			parsed, verrs := form.Validate()
			errs = verrs
			if errs.Empty() {
				task := &models.Task{
					Name:        form.Name,
					Description: form.Description,
					Deadline:    parsed,
					Status:      models.TaskStatus(form.Status),
					ProjectID:   project.ID,
					CreatorID:   user.ID,
				}
				if err := a.Store.CreateTask(r.Context(), task); err != nil {
					a.serverError(w, r, err, "ProjectTasksHandler: erro ao criar tarefa")
					return
				}
				utilities.LogInfo("Tarefa %d criada no projeto %d pelo usuário %d", task.ID, project.ID, user.ID)
				setFlash(w, "success", "Task created successfully!")
				http.Redirect(w, r, tasksURL(project.ID), http.StatusSeeOther)
				return
			}
		}
		status = http.StatusUnprocessableEntity
	}

	tasks, err := a.Store.ListTasksByProject(r.Context(), project.ID)
	if err != nil {
		a.serverError(w, r, err, "ProjectTasksHandler: erro ao listar tarefas")
		return
	}

	a.render(w, r, status, "tasks.html", &pageData{
		Title:    project.Name,
		Form:     form,
		Errors:   errs,
		Project:  project,
		Tasks:    tasks,
		Statuses: models.TaskStatuses,
	})
}

// TaskHandler exibe o formulário de edição (GET) e salva as alterações (POST)
func (a *App) TaskHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadModifiableTask(w, r)
	if !ok {
		return
	}

	form := newTaskForm(task)
	data := &pageData{Title: "Edit Task", Task: task, Statuses: models.TaskStatuses}
	if r.Method != http.MethodPost {
		data.Form = form
		a.render(w, r, http.StatusOK, "task.html", data)
		return
	}

	errs, err := decodeForm(r, &form)
	if err != nil {
		utilities.LogError(err, "TaskHandler: corpo da requisição inválido")
		a.renderError(w, r, http.StatusBadRequest)
		return
	}
	var deadline = task.Deadline
	if errs.Empty() {
		deadline, errs = form.Validate()
	}
	if !errs.Empty() {
		data.Form = form
		data.Errors = errs
		a.render(w, r, http.StatusUnprocessableEntity, "task.html", data)
		return
	}

	task.Name = form.Name
	task.Description = form.Description
	task.Deadline = deadline
	task.Status = models.TaskStatus(form.Status)
	if err := a.Store.UpdateTask(r.Context(), task); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			a.renderError(w, r, http.StatusNotFound)
			return
		}
		a.serverError(w, r, err, "TaskHandler: erro ao atualizar tarefa")
		return
	}

	utilities.LogInfo("Tarefa %d atualizada", task.ID)
	setFlash(w, "success", "Task updated successfully!")
	http.Redirect(w, r, tasksURL(task.ProjectID), http.StatusSeeOther)
}

// DeleteTaskHandler apaga a tarefa e volta para a lista do projeto
func (a *App) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadModifiableTask(w, r)
	if !ok {
		return
	}

	if err := a.Store.DeleteTask(r.Context(), task.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
		a.serverError(w, r, err, "DeleteTaskHandler: erro ao apagar tarefa")
		return
	}

	utilities.LogInfo("Tarefa %d apagada", task.ID)
	setFlash(w, "success", "Task deleted successfully!")
	http.Redirect(w, r, tasksURL(task.ProjectID), http.StatusSeeOther)
}

func tasksURL(projectID int64) string {
	return "/project/" + strconv.FormatInt(projectID, 10) + "/tasks"
}
